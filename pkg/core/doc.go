// Package core holds the process-wide context of a run.
//
// A Context owns the type registry, the toolbox catalogue, the journal and
// the factory of one process (one rank of a job). Everything that used to
// be ambient global state is reached through it.
//
// # Ordering
//
// The context must be started before use and shut down after use:
//
//  1. New creates empty registries and a journal bound to the rank.
//  2. Startup writes the banner on the watched rank, waits on the barrier
//     so that the banner comes first across ranks, applies journal
//     settings, initialises the configured toolboxes in dependency order
//     and creates the factory with the run-wide parameters.
//  3. Run constructs the configured instances and drives them through
//     Build, Initialise and a number of Execute steps.
//  4. Shutdown destroys every instance in reverse declaration order and
//     finalises toolboxes in reverse initialisation order. It runs at
//     most once and is safe after a failed Startup.
//
// # Ranks
//
// Barrier abstracts the one collective operation the core needs. A
// single process uses SingleProcess; RunLocal starts several ranks as
// goroutines sharing a LocalGroup barrier.
package core

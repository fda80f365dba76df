package commands

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Run StGermain-style component simulations"
	MsgRunShort        = "Run a simulation described by a config file"
	MsgTypesShort      = "Show the registered component type tree"
	MsgToolboxesShort  = "Show the toolbox catalogue and initialisation order"
	MsgConfigShort     = "Print the resolved run description"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Flag descriptions
	MsgFlagVerbose        = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagOutput         = "Listing format: auto, term or text"
	MsgFlagRank           = "Rank of this process in a single-process run"
	MsgFlagSize           = "Number of ranks to run in this process"
	MsgFlagWatchRank      = "Rank whose RPrintf output is shown (overrides journal.watch_rank)"
	MsgFlagExecute        = "Number of Execute rounds"
	MsgFlagListComponents = "List the instances of the watched rank after the run"
	MsgFlagConfigFormat   = "Output syntax: toml, yaml or xml"
	MsgFlagSet            = "Override a setting, e.g. --set params.dt=0.1 (repeatable)"

	// Status messages
	MsgVersionFormat = "stgrun version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrNoCommand       = "no command specified"
	MsgErrRankWithSize    = "--rank cannot be combined with --size > 1; every rank runs locally"
	MsgErrNegativeFlag    = "--%s must not be negative"
	MsgErrSubmitToolboxes = "failed to submit toolboxes: %w"
)

const MsgRootLong = `stgrun drives component simulations through their lifecycle.

A run description (TOML, YAML or StGermain XML) names the toolboxes to
load, the root parameter dictionary and the component instances. stgrun
loads the toolboxes in dependency order, constructs every instance,
builds and initialises them, executes them for the requested number of
rounds and tears everything down in reverse order.`

const MsgRunLong = `Run loads the run description in <file> and drives every declared
component through construct, build, initialise, execute and destroy.

Arguments after the file are handed to toolboxes. With --size greater
than one, that many ranks run in this process and meet at the startup
barrier; only the watched rank prints RPrintf output.`

const MsgTypesLong = `Types initialises the toolboxes named in [file] (or every known
toolbox when no file is given) and prints the type hierarchy they
registered.`

const MsgToolboxesLong = `Toolboxes lists every submitted toolbox with its dependencies. When
[file] is given its toolboxes are initialised first, and the listing
shows the order they were initialised in.`

const MsgConfigLong = `Config loads <file> with defaults and STG_ environment overrides
applied, validates it and prints the result.`

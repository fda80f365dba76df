// Package factory instantiates components by type name and drives them
// through their lifecycle.
//
// A Factory owns the instance directory of one run. Instances are kept in
// declaration order. Each phase is applied to the whole set before the
// next begins:
//
//	Construct + Assign   per instance, as declared
//	BuildAll             references resolved by name, forward references allowed
//	InitialiseAll        only once every instance is built
//	ExecuteAll           any number of times
//	DestroyAll           reverse declaration order, from any state
//
// Components hold references to their peers by name (component.Ref) until
// Build, when the resolver turns them into live handles. Build only needs
// the target to exist, not to be built itself. A component whose own Build
// or Initialise needs a peer further along calls EnsureBuilt or
// EnsureInitialised on the resolver; the peer runs that phase once, early,
// and the bulk pass skips it.
package factory

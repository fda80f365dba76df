// Package component defines the lifecycle contract every component type
// implements and the state machine that drives it.
//
// A component is created by its registered Constructor, bound to its
// configuration (AssignFromConfig), wired to its peers (Build), prepared
// (Initialise), run any number of times (Execute) and finally released
// (Destroy):
//
//	Unconstructed → Constructed → ConfigBound → Built → Initialised → (Executing)* → Destroyed
//
// Instance enforces the order. Calling a phase out of order is a
// PHASE_VIOLATION and the component's hook is not invoked. Destroy is
// accepted from every state and is a no-op the second time, so error
// unwinding can always tear everything down.
//
// References between components are made in two steps. AssignFromConfig
// only records the name a field points to (a Ref); Build turns the Ref
// into the live peer through a Resolver. The peer may not have been built
// yet at that point, only constructed.
package component

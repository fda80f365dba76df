// Package registry holds named, ordered stores.
//
// Registry[T] is the generic store: thread-safe, keyed by name, and
// remembering the index each name was registered at. TypeRegistry builds
// on it to map component type names to constructors and a single parent
// type, answering ancestry questions such as IsA.
//
// Types are registered by toolboxes during startup. After that the
// registries are only read.
package registry

// Package config loads run descriptions.
//
// A run description names the toolboxes to load, a root parameter
// dictionary, the component instances to create (in declaration order)
// and journal settings. It can be written as TOML, YAML or StGermain-style
// XML; all three decode to the same RunConfig.
//
// Sources are layered with koanf: embedded defaults, then the file, then
// environment variables prefixed STG_ where a double underscore separates
// nesting levels (STG_JOURNAL__WATCH_RANK=2).
package config

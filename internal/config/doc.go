// Package config provides jsondoc settings.
//
// Settings are resolved in layers, each overriding the one before:
//
//  1. Built-in defaults (Default)
//  2. A configuration file, TOML or YAML by extension
//  3. JSONDOC_ environment variables
//  4. Command-line flags, applied by the caller with Set
//
// Setting paths are dot separated section.name pairs:
//
//	log.level             debug | info | warn | error
//	history.limit         maximum undo entries, 0 for unlimited
//	dump.color            auto | always | never
//	script.timeout        duration limit per script run
//	script.callStackSize  Lua call stack size
//	watch.debounce        delay before re-running a changed script
package config

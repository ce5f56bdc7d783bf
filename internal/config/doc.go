// Package config provides domkit's run configuration.
//
// Configuration is resolved in layers, later layers winning:
//
//  1. Defaults
//  2. A config file, TOML or YAML chosen by extension
//  3. DOMKIT_* environment variables
//  4. Command-line flags (applied by cmd/domkit)
//
// Relative paths in a config file are resolved against the file's directory.
//
// Example domkit.toml:
//
//	document = "index.html"
//	scripts  = ["app.lua"]
//
//	[log]
//	level = "debug"
//
//	[script]
//	timeout = "2s"
//
//	[[dispatch]]
//	selector = "button.save"
//	event    = "click"
//
//	[dump]
//	enabled = true
//	path    = "nodes.#.events"
package config

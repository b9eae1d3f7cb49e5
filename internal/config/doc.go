// Package config handles configuration loading for quill.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from QUILL_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/quill/quill.yaml
//  3. ~/.config/quill/quill.yaml
//
// A path ending in .toml is parsed as TOML. If no file exists, a built-in
// document is used that reads everything from the environment:
//
//	JWT_SECRET      signing secret (required)
//	GEMINI_API_KEY  generation provider key (optional)
//	PORT            HTTP port, default 3000
//	QUILL_DB        database path
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${QUILL_JWT_SECRET}"
//
// Unset variables expand to the empty string.
package config

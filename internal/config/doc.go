// Package config loads and validates the application settings.
//
// Settings come from three layers, later ones overriding earlier ones:
// built-in defaults, an optional YAML config file, and KKDL_-prefixed
// environment variables. CLI flags are bound on top by the cmd package.
//
// Validation happens exactly once, before any work starts; a retry or
// concurrency budget that can never execute is a startup error, not a
// run-time fault.
package config

// Package config handles configuration loading, parsing, and validation
// from a config file and KANBAN_-prefixed environment variables. The loaded
// Config is built once at process start and passed by reference to the
// components that need it.
package config

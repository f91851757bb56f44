// Package config loads the runtime configuration surface: documented
// defaults, an optional JSON-with-comments file on disk, and command-line
// overrides, in that order of increasing precedence.
package config

// Package config loads and validates relay configuration from YAML.
//
// Files may reference environment variables with ${VAR}; they are
// expanded before parsing. Omitted fields fall back to defaults.
package config

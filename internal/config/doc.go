// Package config provides configuration management for the Labor Pulse
// service. Values come from environment variables (LP_* prefix), an optional
// YAML file, and struct-tag defaults, with the environment taking precedence.
// The loaded configuration is validated before use.
package config

// Package config loads and validates the relay service configuration from
// the environment, optionally seeded from a .env file.
//
// All settings live in an explicit Config struct constructed once at process
// start; nothing reads the environment after Load returns.
package config

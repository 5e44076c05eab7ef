// Package cmd implements the graphmailer command-line interface.
//
// Commands:
//
//   - serve: start the HTTP relay server (default when no subcommand is given)
//   - login: run the device-code sign-in and seed the token cache
//   - version: print the version number
package cmd

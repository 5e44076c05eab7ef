package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the graphmailer application
var rootCmd = &cobra.Command{
	Use:   "graphmailer",
	Short: "HTTP relay for sending mail through Microsoft Graph",
	Long: `graphmailer exposes a small HTTP API that accepts structured email
requests and relays them to the Microsoft Graph sendMail endpoint.

It supports two authentication modes:
  - app: client-credentials (app-only), sending on behalf of a configured mailbox
  - delegated: acting as a signed-in user, seeded via the login command`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "graphmailer version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newVersionCmd())
}

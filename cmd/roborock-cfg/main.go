// Roborock-cfg is a configuration utility for Roborock home robots.
//
// It links Roborock accounts using the email verification code login,
// stores the resulting configuration entries locally, and edits per-entry
// platform options such as the camera map transform. This tool talks to
// the Roborock account service over HTTPS; it never contacts robots
// directly.
//
// Usage:
//
//	roborock-cfg [command] [flags]
//
// Running without arguments launches the interactive wizard.
// See 'roborock-cfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skovtroldenhugo/roborock/internal/logging"
	"github.com/skovtroldenhugo/roborock/internal/version"
)

func main() {
	logging.InitializeFromEnv()
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "roborock-cfg",
	Short: "Roborock Account Configuration Utility",
	Long: `A standalone utility for configuring Roborock home robot integrations.

Links Roborock accounts via the emailed verification code, stores
configuration entries locally, and edits per-entry platform options
(camera map transform, vacuum).

If no command is specified, the interactive wizard will launch automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run wizard when no subcommand provided
		return runWizard(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("roborock-cfg %s (commit: %s)\n", version.Version, version.Commit)
	},
}

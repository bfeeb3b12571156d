// Package commands provides the CLI commands for hierconf.
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hierconf/hierconf/internal/logging"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	logLevel string
	workDir  string
	appName  string
)

var rootCmd = &cobra.Command{
	Use:   "hierconf",
	Short: "hierconf - hierarchical configuration resolution",
	Long: `hierconf resolves an application's effective configuration by walking
up the directory tree, loading each level's configuration directory, and
deep-merging the documents so that nearer directories win.

Run 'hierconf resolve' to print the merged configuration, or
'hierconf dirs' to see which directories contribute to it.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand, show help
		cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A .env next to the invocation can supply $HOME/$TMPDIR style
		// values used in boundary patterns.
		_ = godotenv.Load()
		logging.Init(logging.Config{
			Level:  logging.ParseLevel(logLevel),
			Pretty: true,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().StringVar(&workDir, "dir", "", "Directory to resolve from (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&appName, "app", "hierconf", "Application name used in config file patterns")

	rootCmd.SetVersionTemplate(fmt.Sprintf("hierconf %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(dirsCmd)
	rootCmd.AddCommand(rootDirCmd)
	rootCmd.AddCommand(checkCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getWorkDir returns the working directory from the flag or the process.
func getWorkDir() (string, error) {
	if workDir != "" {
		return workDir, nil
	}
	return os.Getwd()
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "vetclinic",
	Short:         "Veterinary clinic backend: appointments, grooming and reminders",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, jobsCmd)
}

// Execute runs the root command. With no subcommand the API server starts.
func Execute() {
	rootCmd.RunE = serveCmd.RunE
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "coursehub",
	Short: "Course marketplace API server",
	Long:  "Coursehub serves the course catalogue, purchases, chapter progress and quiz grading over HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("port", "", "HTTP port (overrides SERVER_PORT)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs without colours or file positions")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

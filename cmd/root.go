package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/growth90/internal/app"
	"github.com/abhisek/growth90/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "growth90",
	Short: "90-day professional learning companion",
	Long:  "Growth90 — terminal app that builds a personalized 90-day professional learning path and tracks your progress through it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return err
		}
		return app.Run(cmd.Context(), dbPath)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// API keys commonly live in a local .env during development.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides GROWTH90_DB env var)")

	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(dataCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then GROWTH90_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

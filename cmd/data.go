package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/growth90/internal/store"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Export, import, and maintain the local database",
}

var dataExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export all data to a JSON snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		snap, err := st.Export(cmd.Context())
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		b, err := store.MarshalSnapshot(snap)
		if err != nil {
			return fmt.Errorf("serialize snapshot: %w", err)
		}
		if err := os.WriteFile(args[0], b, 0o600); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}

		var total int
		for _, recs := range snap.Stores {
			total += len(recs)
		}
		fmt.Printf("Exported %d records to %s\n", total, args[0])
		return nil
	},
}

var dataImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSON snapshot (overwrites matching records)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		snap, err := store.UnmarshalSnapshot(b)
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Import(cmd.Context(), snap); err != nil {
			return fmt.Errorf("import: %w", err)
		}
		fmt.Println("Import complete.")
		return nil
	},
}

var dataMaintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Sweep expired cache entries and old analytics events",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.Maintenance(cmd.Context())
		if err != nil {
			return fmt.Errorf("maintenance: %w", err)
		}
		fmt.Printf("Removed %d expired cache entries, pruned %d analytics events.\n",
			stats.ExpiredCacheEntries, stats.PrunedAnalytics)
		return nil
	},
}

// openStore opens the raw store without the rest of the service stack.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

func init() {
	dataCmd.AddCommand(dataExportCmd)
	dataCmd.AddCommand(dataImportCmd)
	dataCmd.AddCommand(dataMaintainCmd)
}

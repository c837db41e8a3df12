package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/growth90/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all local data",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("this deletes every profile, path, and assessment; re-run with --yes to confirm")
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		for _, def := range store.Schema() {
			if err := st.Clear(ctx, def.Name); err != nil {
				return fmt.Errorf("clear %s: %w", def.Name, err)
			}
		}
		fmt.Println("All data cleared.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/growth90/internal/assessment"
	"github.com/abhisek/growth90/internal/path"
	"github.com/abhisek/growth90/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, prof, err := openWithProfile(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := cmd.Context()

		p, err := svc.Paths.ActivePath(ctx, prof.ID)
		if err != nil {
			return fmt.Errorf("load active path: %w", err)
		}
		if p == nil {
			fmt.Println("No active path.")
			return nil
		}

		day, _ := svc.Paths.CurrentDay(ctx, prof.ID, p)
		streak, _ := svc.Paths.Streak(ctx, prof.ID, p.ID)
		invested, _ := svc.Paths.TimeInvested(ctx, prof.ID, p.ID)

		fmt.Println(p.Title)
		fmt.Println(strings.Repeat("─", 60))
		fmt.Printf("Current day:     %d of %d\n", day, p.Progress.TotalDays)
		fmt.Printf("Days completed:  %d\n", len(p.Progress.CompletedDays))
		fmt.Printf("Streak:          %d days\n", streak)
		fmt.Printf("Time invested:   %d minutes\n", invested)

		weeks := path.Weeks(p)
		fmt.Println()
		for _, w := range weeks {
			wp, err := svc.Paths.WeekProgressOf(ctx, prof.ID, p, w.Number)
			if err != nil {
				continue
			}
			filled := wp.Percent / 10
			bar := strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
			fmt.Printf("Week %2d  %s  %3d%%\n", w.Number, bar, wp.Percent)
		}

		results, err := svc.Store.QueryItems(ctx, store.Assessments, store.Query{
			Index: "type",
			Range: &store.Range{Only: "result"},
		})
		if err == nil && len(results) > 0 {
			fmt.Println()
			fmt.Println("Assessments")
			fmt.Println(strings.Repeat("─", 60))
			for _, rec := range results {
				var wrapped struct {
					UserID string            `json:"userId"`
					Result assessment.Result `json:"result"`
				}
				if err := store.FromRecord(rec, &wrapped); err != nil || wrapped.UserID != prof.ID {
					continue
				}
				r := wrapped.Result
				fmt.Printf("%-20s  overall %3.0f  (%d questions, %s)\n",
					truncate(r.CompletedAt, 10), r.Scores.Overall, r.QuestionsAnswered, r.Validity)
			}
		}

		return nil
	},
}

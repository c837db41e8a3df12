package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/growth90/internal/app"
	"github.com/abhisek/growth90/internal/content"
	"github.com/abhisek/growth90/internal/path"
	"github.com/abhisek/growth90/internal/profile"
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Create and inspect learning paths",
}

var pathOptionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List suggested specializations for your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, prof, err := openWithProfile(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		specs, err := svc.Content.GetSpecializations(cmd.Context(), prof.Industry, prof.Role)
		if err != nil {
			return fmt.Errorf("discover specializations: %w", err)
		}

		fmt.Printf("%-24s  %-32s  %s\n", "ID", "Name", "Description")
		fmt.Println(strings.Repeat("─", 100))
		for _, s := range specs {
			fmt.Printf("%-24s  %-32s  %s\n", s.ID, truncate(s.Name, 32), truncate(s.Description, 40))
		}
		return nil
	},
}

var pathNewCmd = &cobra.Command{
	Use:   "new <specialization>",
	Short: "Generate a new 90-day learning path",
	Long: "Generates a personalized curriculum for the given specialization and makes it the active path. " +
		"Any previously active path is archived.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		title, _ := cmd.Flags().GetString("title")

		svc, prof, err := openWithProfile(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx := cmd.Context()
		spec := content.Specialization{ID: args[0], Name: args[0]}

		fmt.Println("Generating curriculum...")
		payload, err := svc.Content.GeneratePath(ctx, content.PathRequest{
			UserID:         prof.ID,
			Specialization: spec,
			Industry:       prof.Industry,
			Role:           prof.Role,
			Experience:     prof.Experience,
			Goal:           prof.Goal,
			TimeCommitment: prof.TimeCommitment,
			TotalDays:      days,
		})
		if err != nil {
			return fmt.Errorf("generate path: %w", err)
		}

		if title == "" {
			title = fmt.Sprintf("90 days of %s", spec.Name)
		}
		p, err := svc.Paths.CreatePath(ctx, path.CreateInput{
			UserID:           prof.ID,
			SpecializationID: spec.ID,
			Title:            title,
			Payload:          payload,
		})
		if err != nil {
			return fmt.Errorf("create path: %w", err)
		}

		fmt.Printf("Created %q (%d days, %d milestones). It is now your active path.\n",
			p.Title, p.Progress.TotalDays, len(path.Milestones(p)))
		return nil
	},
}

var pathListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your learning paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, prof, err := openWithProfile(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		paths, err := svc.Paths.UserPaths(cmd.Context(), prof.ID)
		if err != nil {
			return fmt.Errorf("list paths: %w", err)
		}
		if len(paths) == 0 {
			fmt.Println("No paths yet. Create one with `growth90 path new <specialization>`.")
			return nil
		}

		fmt.Printf("%-36s  %-32s  %-9s  %s\n", "ID", "Title", "Status", "Progress")
		fmt.Println(strings.Repeat("─", 96))
		for _, p := range paths {
			fmt.Printf("%-36s  %-32s  %-9s  %d/%d days\n",
				truncate(p.ID, 36), truncate(p.Title, 32), p.Status,
				len(p.Progress.CompletedDays), p.Progress.TotalDays)
		}
		return nil
	},
}

// openWithProfile opens the services and resolves the onboarded profile.
func openWithProfile(cmd *cobra.Command) (*app.Services, *profile.Profile, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve database path: %w", err)
	}
	svc, err := app.OpenServices(cmd.Context(), dbPath)
	if err != nil {
		return nil, nil, err
	}

	userID := svc.CurrentUserID(context.Background())
	if userID == "" {
		svc.Close()
		return nil, nil, fmt.Errorf("no profile yet: run `growth90` and set up your profile first")
	}
	prof, err := svc.Profiles.Get(cmd.Context(), userID)
	if err != nil {
		svc.Close()
		return nil, nil, fmt.Errorf("load profile: %w", err)
	}
	return svc, prof, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func init() {
	pathNewCmd.Flags().Int("days", 0, "Path length in days (default 90)")
	pathNewCmd.Flags().String("title", "", "Path title (default derived from the specialization)")

	pathCmd.AddCommand(pathOptionsCmd)
	pathCmd.AddCommand(pathNewCmd)
	pathCmd.AddCommand(pathListCmd)
}

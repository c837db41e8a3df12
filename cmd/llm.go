package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/growth90/internal/events"
	"github.com/abhisek/growth90/internal/llm"
	"github.com/abhisek/growth90/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request telemetry",
}

// llmEvent is the analytics payload written for each LLM request.
type llmEvent struct {
	Timestamp string `json:"timestamp"`
	Data      struct {
		Provider     string  `json:"provider"`
		Model        string  `json:"model"`
		Purpose      string  `json:"purpose"`
		LatencyMs    float64 `json:"latencyMs"`
		Success      bool    `json:"success"`
		InputTokens  float64 `json:"inputTokens"`
		OutputTokens float64 `json:"outputTokens"`
		Error        string  `json:"error"`
	} `json:"data"`
}

func loadLLMEvents(cmd *cobra.Command) ([]llmEvent, error) {
	st, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	recs, err := st.QueryItems(cmd.Context(), store.Analytics, store.Query{
		Index: "event",
		Range: &store.Range{Only: events.LLMRequest},
	})
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}

	out := make([]llmEvent, 0, len(recs))
	for _, rec := range recs {
		var e llmEvent
		if err := store.FromRecord(rec, &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		all, err := loadLLMEvents(cmd)
		if err != nil {
			return err
		}
		if purpose != "" {
			filtered := all[:0]
			for _, e := range all {
				if e.Data.Purpose == purpose {
					filtered = append(filtered, e)
				}
			}
			all = filtered
		}
		if len(all) == 0 {
			fmt.Println("No LLM requests recorded.")
			return nil
		}
		if limit > 0 && len(all) > limit {
			all = all[len(all)-limit:]
		}

		fmt.Printf("%-20s  %-24s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 104))
		for _, e := range all {
			ok := "✓"
			if !e.Data.Success {
				ok = "✗"
			}
			fmt.Printf("%-20s  %-24s  %-28s  %-6d  %-6d  %-7d  %s\n",
				truncate(e.Timestamp, 19),
				truncate(e.Data.Purpose, 24),
				truncate(e.Data.Model, 28),
				int(e.Data.InputTokens),
				int(e.Data.OutputTokens),
				int(e.Data.LatencyMs),
				ok,
			)
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := loadLLMEvents(cmd)
		if err != nil {
			return err
		}
		if len(all) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		type usage struct {
			calls          int
			in, out        int
			totalLatencyMs int
		}
		byPurpose := make(map[string]*usage)
		byModel := make(map[string]*usage)
		add := func(m map[string]*usage, key string, e llmEvent) {
			u := m[key]
			if u == nil {
				u = &usage{}
				m[key] = u
			}
			u.calls++
			u.in += int(e.Data.InputTokens)
			u.out += int(e.Data.OutputTokens)
			u.totalLatencyMs += int(e.Data.LatencyMs)
		}
		for _, e := range all {
			add(byPurpose, e.Data.Purpose, e)
			add(byModel, e.Data.Model, e)
		}

		fmt.Println("Usage by Purpose")
		fmt.Println(strings.Repeat("─", 72))
		fmt.Printf("%-26s  %6s  %10s  %10s  %8s\n",
			"Purpose", "Calls", "Input", "Output", "Avg Ms")
		fmt.Println(strings.Repeat("─", 72))

		var totalCalls, totalIn, totalOut int
		for _, purpose := range sortedKeys(byPurpose) {
			u := byPurpose[purpose]
			fmt.Printf("%-26s  %6d  %10d  %10d  %8d\n",
				purpose, u.calls, u.in, u.out, u.totalLatencyMs/u.calls)
			totalCalls += u.calls
			totalIn += u.in
			totalOut += u.out
		}
		fmt.Println(strings.Repeat("─", 72))
		fmt.Printf("%-26s  %6d  %10d  %10d\n", "TOTAL", totalCalls, totalIn, totalOut)

		fmt.Println()
		fmt.Println("Estimated Cost (USD)")
		fmt.Println(strings.Repeat("─", 72))
		fmt.Printf("%-32s  %6s  %10s  %10s  %10s\n",
			"Model", "Calls", "Input", "Output", "Cost")
		fmt.Println(strings.Repeat("─", 72))

		var totalCost float64
		var unknownModels []string
		for _, model := range sortedKeys(byModel) {
			u := byModel[model]
			cost := llm.LookupCost(model)
			if cost == nil {
				unknownModels = append(unknownModels, model)
				fmt.Printf("%-32s  %6d  %10d  %10d  %10s\n",
					truncate(model, 32), u.calls, u.in, u.out, "?")
				continue
			}
			c := cost.Cost(u.in, u.out)
			totalCost += c
			fmt.Printf("%-32s  %6d  %10d  %10d  %9s\n",
				truncate(model, 32), u.calls, u.in, u.out, formatCost(c))
		}

		fmt.Println(strings.Repeat("─", 72))
		label := "TOTAL"
		if len(unknownModels) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Printf("%-32s  %6s  %10s  %10s  %9s\n",
			label, "", "", "", formatCost(totalCost))

		if len(unknownModels) > 0 {
			fmt.Printf("\nPricing unavailable for: %s\n", strings.Join(unknownModels, ", "))
		}
		return nil
	},
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. path-generation, lesson-generation)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmStatsCmd)
}

package main

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/Veraticus/market-basket/internal/apriori"
	"github.com/Veraticus/market-basket/internal/cli"
	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules [run-id]",
		Short: "Show the association rules of a saved run",
		Long: `Show the rules of a saved mining run, newest run by default.

Examples:
  # Strongest associations first
  basket rules --sort lift --min-lift 1.2

  # What goes with coffee?
  basket rules --item coffee`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRules,
	}

	cmd.Flags().String("sort", "confidence", "sort by confidence, lift or support")
	cmd.Flags().Float64("min-lift", 0, "hide rules with lower lift")
	cmd.Flags().String("item", "", "only rules mentioning this item")
	cmd.Flags().Int("limit", 50, "rows to print (0 = all)")

	return cmd
}

func runRules(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sortBy, _ := cmd.Flags().GetString("sort")
	minLift, _ := cmd.Flags().GetFloat64("min-lift")
	item, _ := cmd.Flags().GetString("item")
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	result, err := loadRun(ctx, store, runIDArg(args))
	if err != nil {
		return err
	}

	rules, err := selectRules(result.Rules, sortBy, minLift, item)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Rules of run %s (%s)", result.Run.ID, result.Run.Source)))
	fmt.Fprintln(out, cli.RenderRules(rules, limit))
	return nil
}

// selectRules filters rules by lift and item and orders them by the named
// metric. Ties keep the confidence-then-lift order rules are stored in.
func selectRules(rules []apriori.Rule, sortBy string, minLift float64, item string) ([]apriori.Rule, error) {
	var metric func(apriori.Rule) float64
	switch strings.ToLower(sortBy) {
	case "confidence", "":
		metric = func(r apriori.Rule) float64 { return r.Confidence }
	case "lift":
		metric = func(r apriori.Rule) float64 { return r.Lift }
	case "support":
		metric = func(r apriori.Rule) float64 { return r.Support }
	default:
		return nil, fmt.Errorf("invalid --sort %q: want confidence, lift or support", sortBy)
	}

	item = strings.ToLower(strings.TrimSpace(item))
	selected := make([]apriori.Rule, 0, len(rules))
	for _, r := range rules {
		if r.Lift < minLift {
			continue
		}
		if item != "" && !slices.Contains(r.Antecedent, item) && !slices.Contains(r.Consequent, item) {
			continue
		}
		selected = append(selected, r)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return metric(selected[i]) > metric(selected[j])
	})
	return selected, nil
}

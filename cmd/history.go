/*
Copyright © 2025 Mykola Hryhorenko <m.hryhorenko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mhryhorenko/pravka/internal/store"
)

var historyDBPath string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past correction runs",
	Long: `List past runs and show the per-unit trace of a run: which rules
touched each unit, whether the model pass applied, and why a unit was
skipped or fell back to its original text.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(historyDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		runs, err := db.ListRuns(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("No recorded runs.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWHEN\tINPUT\tUNITS\tCHANGED\tSKIPPED\tFAILED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.InputFile,
				r.Units, r.Corrected, r.Skipped, r.RuleFailures+r.LLMFailures)
		}
		return w.Flush()
	},
}

var historyShowChangedOnly bool

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the per-unit trace of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(historyDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		units, err := db.GetRunUnits(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load run: %w", err)
		}
		if len(units) == 0 {
			fmt.Println("No trace recorded for that run.")
			return nil
		}

		for _, u := range units {
			changed := u.Original != u.Corrected
			if historyShowChangedOnly && !changed && u.RuleError == "" && u.LLMError == "" {
				continue
			}
			fmt.Printf("unit %d", u.Index)
			if u.RulesApplied != "" {
				fmt.Printf(" rules=[%s]", u.RulesApplied)
			}
			if u.LLMApplied {
				fmt.Printf(" llm")
			}
			if u.Skipped {
				fmt.Printf(" skipped")
			}
			fmt.Println()
			if changed {
				fmt.Printf("  - %s\n  + %s\n", u.Original, u.Corrected)
			}
			if u.RuleError != "" {
				fmt.Printf("  ! rules: %s\n", u.RuleError)
			}
			if u.LLMError != "" {
				fmt.Printf("  ! llm: %s\n", u.LLMError)
			}
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(historyDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		n, err := db.ClearRuns(context.Background())
		if err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Printf("Removed %d run(s)\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyCmd.PersistentFlags().StringVar(&historyDBPath, "db", "./data/pravka.db", "Database path")
	historyShowCmd.Flags().BoolVar(&historyShowChangedOnly, "changed-only", false, "Show only units that changed or failed")
}

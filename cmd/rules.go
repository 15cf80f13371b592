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

	"github.com/mhryhorenko/pravka/internal/rules"
	"github.com/mhryhorenko/pravka/internal/store"
)

var rulesDBPath string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage custom correction rules",
	Long: `Add, list, and delete custom correction rules.

Custom rules run after the built-in rules on every unit. Like the
built-ins they must be idempotent: a rule whose replacement still
matches its own pattern will rewrite text on every pass.`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List custom rules in application order",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(rulesDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		saved, err := db.ListCustomRules(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list rules: %w", err)
		}

		if len(saved) == 0 {
			fmt.Println("No custom rules.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tPATTERN\tREPLACEMENT")
		for _, r := range saved {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.Name, r.MatchType, r.Pattern, r.Replacement)
		}
		return w.Flush()
	},
}

var (
	ruleAddName  string
	ruleAddType  string
	ruleAddNotes string
)

var rulesAddCmd = &cobra.Command{
	Use:   "add <pattern> <replacement>",
	Short: "Add a custom rule",
	Long: `Add a custom substitution rule.

Example:
  pravka rules add "utilize" "use" --name prefer-use --type case-insensitive`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		matchType, err := rules.ParseMatchType(ruleAddType)
		if err != nil {
			return err
		}
		// Compile up front so a broken pattern is rejected here, not at
		// document-processing time.
		if _, err := rules.NewCustom("probe", matchType, args[0], args[1]); err != nil {
			return err
		}

		db, err := store.New(rulesDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		r, err := db.AddCustomRule(context.Background(), ruleAddName, args[0], args[1], string(matchType), ruleAddNotes)
		if err != nil {
			return fmt.Errorf("failed to add rule: %w", err)
		}
		fmt.Printf("Added rule %s: %q -> %q (%s)\n", r.ID, r.Pattern, r.Replacement, r.MatchType)
		return nil
	},
}

var rulesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a custom rule by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(rulesDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.DeleteCustomRule(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete rule: %w", err)
		}
		fmt.Printf("Deleted rule: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesAddCmd)
	rulesCmd.AddCommand(rulesDeleteCmd)

	rulesCmd.PersistentFlags().StringVar(&rulesDBPath, "db", "./data/pravka.db", "Database path")
	rulesAddCmd.Flags().StringVar(&ruleAddName, "name", "", "Human-readable rule name")
	rulesAddCmd.Flags().StringVar(&ruleAddType, "type", "exact", "Match type: exact, case-insensitive, or regex")
	rulesAddCmd.Flags().StringVar(&ruleAddNotes, "notes", "", "Free-form notes")
}

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
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mhryhorenko/pravka/internal/corrector"
	"github.com/mhryhorenko/pravka/internal/docio"
	"github.com/mhryhorenko/pravka/internal/document"
	"github.com/mhryhorenko/pravka/internal/pipeline"
	"github.com/mhryhorenko/pravka/internal/rules"
	"github.com/mhryhorenko/pravka/internal/store"
)

var (
	correctInput  string
	correctOutput string

	noRules   bool
	useLLM    bool
	orderName string

	provider     string
	modelName    string
	baseURL      string
	apiKey       string
	systemPrompt string
	unitTimeout  time.Duration
	concurrency  int

	verifyLanguage bool
	protectMarkup  bool

	correctDBPath string
	noHistory     bool
	noCustomRules bool
)

var correctCmd = &cobra.Command{
	Use:   "correct",
	Short: "Correct prose in a document",
	Long: `Correct prose in a .docx, .txt, or .md document.

Two stages are available per text unit (paragraph or line):
  - rules  deterministic, idempotent corrections (on by default)
  - llm    grammar correction by a language model (off by default)

The --order flag decides which stage runs first. rules-first lets the
model see already-normalized phrasing; llm-first gives the rules the
last word, so fixed-phrase substitutions survive even if the model
reverts them.

Examples:
  pravka correct -i report.docx -o report-fixed.docx
  pravka correct -i notes.md -o notes-fixed.md --llm --order llm-first
  pravka correct -i draft.txt -o final.txt --llm --provider ollama --model llama3.2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if correctInput == correctOutput {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		format, err := docio.DetectFormat(correctInput)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(correctInput)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}

		texts, err := docio.ExtractUnits(data, format)
		if err != nil {
			return err
		}
		doc := document.New(texts)

		order, err := pipeline.ParseOrder(orderName)
		if err != nil {
			return err
		}

		ctx := context.Background()

		var db *store.Store
		if correctDBPath != "" && !(noHistory && noCustomRules) {
			if err := os.MkdirAll(filepath.Dir(correctDBPath), 0755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
			db, err = store.New(correctDBPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()
		}

		var ruleSet *rules.Set
		if !noRules {
			ruleSet = rules.Default()
			if db != nil && !noCustomRules {
				if err := addCustomRules(ctx, db, ruleSet); err != nil {
					return err
				}
			}
		}

		var corr corrector.Corrector
		if useLLM {
			corr, err = buildCorrector()
			if err != nil {
				return err
			}
		}

		progress := func(completed, total int) {
			fmt.Fprintf(os.Stderr, "\rProcessing unit %d/%d", completed, total)
		}

		pipe := pipeline.New(ruleSet, corr, progress)
		cfg := pipeline.Config{
			UseRules:    !noRules,
			UseLLM:      useLLM,
			Order:       order,
			Concurrency: concurrency,
			UnitTimeout: unitTimeout,
			Corrector: corrector.Config{
				APIKey:        resolveAPIKey(),
				Model:         modelName,
				SystemPrompt:  systemPrompt,
				ProtectMarkup: protectMarkup || format == docio.FormatMarkdown,
			},
		}

		result, err := pipe.Process(ctx, doc, cfg)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return err
		}

		out, err := docio.WriteUnits(data, doc.Texts(), format)
		if err != nil {
			return err
		}

		if dir := filepath.Dir(correctOutput); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		if err := os.WriteFile(correctOutput, out, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}

		if db != nil && !noHistory {
			saveHistory(ctx, db, result)
		}

		fmt.Printf("Corrected %s -> %s\n", correctInput, correctOutput)
		fmt.Printf("Units: %d, changed: %d, skipped: %d\n", doc.Len(), result.Corrected, result.Skipped)
		if result.RuleFailures > 0 {
			fmt.Printf("%d of %d units could not be corrected by rules\n", result.RuleFailures, doc.Len())
		}
		if result.LLMFailures > 0 {
			fmt.Printf("%d of %d units could not be corrected by the model\n", result.LLMFailures, doc.Len())
		}
		return nil
	},
}

// resolveAPIKey prefers the flag, then PRAVKA_API_KEY / OPENAI_API_KEY via
// viper.
func resolveAPIKey() string {
	if apiKey != "" {
		return apiKey
	}
	return viper.GetString("api_key")
}

func buildCorrector() (corrector.Corrector, error) {
	var verify *corrector.Verifier
	if verifyLanguage {
		verify = corrector.NewVerifier()
	}

	switch provider {
	case "openai":
		if resolveAPIKey() == "" {
			return nil, fmt.Errorf("API key required: set --api-key, PRAVKA_API_KEY, or OPENAI_API_KEY")
		}
		return corrector.NewOpenAIClient(baseURL, verify), nil
	case "ollama":
		return corrector.NewOllamaClient(baseURL, verify), nil
	}
	return nil, fmt.Errorf("unknown provider %q (want openai or ollama)", provider)
}

// addCustomRules appends persisted user rules after the built-ins. A rule
// that fails to compile is skipped with a warning rather than aborting the
// run.
func addCustomRules(ctx context.Context, db *store.Store, set *rules.Set) error {
	saved, err := db.ListCustomRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to load custom rules: %w", err)
	}
	for _, cr := range saved {
		mt, err := rules.ParseMatchType(cr.MatchType)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping rule %s: %v\n", cr.Name, err)
			continue
		}
		id := cr.Name
		if id == "" {
			id = cr.ID
		}
		r, err := rules.NewCustom(id, mt, cr.Pattern, cr.Replacement)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping rule %s: %v\n", cr.Name, err)
			continue
		}
		set.Add(r)
	}
	return nil
}

func saveHistory(ctx context.Context, db *store.Store, result *pipeline.Result) {
	runID := uuid.New().String()
	run := store.Run{
		ID:           runID,
		InputFile:    correctInput,
		OutputFile:   correctOutput,
		Provider:     provider,
		Model:        modelName,
		Order:        orderName,
		UseRules:     !noRules,
		UseLLM:       useLLM,
		Units:        result.Doc.Len(),
		Corrected:    result.Corrected,
		Skipped:      result.Skipped,
		RuleFailures: result.RuleFailures,
		LLMFailures:  result.LLMFailures,
	}
	if err := db.SaveRun(ctx, run); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save run history: %v\n", err)
		return
	}
	if err := db.SaveRunUnits(ctx, runID, result.Doc.Units()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save unit trace: %v\n", err)
	}
}

func init() {
	rootCmd.AddCommand(correctCmd)

	correctCmd.Flags().StringVarP(&correctInput, "input", "i", "", "Input document (required)")
	correctCmd.Flags().StringVarP(&correctOutput, "output", "o", "", "Output document (required)")

	correctCmd.Flags().BoolVar(&noRules, "no-rules", false, "Disable the deterministic rule stage")
	correctCmd.Flags().BoolVar(&useLLM, "llm", false, "Enable the LLM grammar correction stage")
	correctCmd.Flags().StringVar(&orderName, "order", "rules-first", "Stage order: rules-first or llm-first")

	correctCmd.Flags().StringVar(&provider, "provider", "openai", "LLM provider: openai or ollama")
	correctCmd.Flags().StringVar(&modelName, "model", "", "Model name (provider default if empty)")
	correctCmd.Flags().StringVar(&baseURL, "base-url", "", "LLM endpoint base URL (provider default if empty)")
	correctCmd.Flags().StringVar(&apiKey, "api-key", "", "API key (falls back to PRAVKA_API_KEY / OPENAI_API_KEY)")
	correctCmd.Flags().StringVar(&systemPrompt, "system-prompt", "", "Override the built-in correction instruction")
	correctCmd.Flags().DurationVar(&unitTimeout, "unit-timeout", 90*time.Second, "Per-unit LLM call timeout (0 = none)")
	correctCmd.Flags().IntVar(&concurrency, "concurrency", 1, "Units corrected in parallel (1 = sequential)")

	correctCmd.Flags().BoolVar(&verifyLanguage, "verify-language", false, "Reject model output whose language differs from the input")
	correctCmd.Flags().BoolVar(&protectMarkup, "protect-markup", false, "Shield code spans and tags from the model (automatic for .md)")

	correctCmd.Flags().StringVar(&correctDBPath, "db", "./data/pravka.db", "Database path for history and custom rules")
	correctCmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in history")
	correctCmd.Flags().BoolVar(&noCustomRules, "no-custom-rules", false, "Do not load persisted custom rules")

	correctCmd.MarkFlagRequired("input")
	correctCmd.MarkFlagRequired("output")
}

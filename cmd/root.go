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
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "pravka",
	Short: "Document prose corrector",
	Long: `pravka corrects prose in .docx, .txt, and .md documents by composing
deterministic correction rules with an optional LLM grammar pass.

Rules are pure, idempotent text transformations (a/an article choice,
fixed-phrase substitutions, user-defined rules). The LLM pass sends each
paragraph to an OpenAI-compatible or Ollama endpoint under a strict
instruction contract; a unit the model fails on keeps its pre-call text.

Use "pravka correct --help" for processing options.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig wires viper: optional ~/.pravka.yaml, PRAVKA_* environment
// variables, and the model credential from PRAVKA_API_KEY or
// OPENAI_API_KEY. The credential is never logged.
func initConfig() {
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".pravka")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("PRAVKA")
	viper.AutomaticEnv()
	_ = viper.BindEnv("api_key", "PRAVKA_API_KEY", "OPENAI_API_KEY")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "warning: failed to read config file: %v\n", err)
		}
	}
}

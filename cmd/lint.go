package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/syntax-tree/unist-util-is/internal/ingest"
	"github.com/syntax-tree/unist-util-is/internal/linter"
	"github.com/syntax-tree/unist-util-is/internal/rules"
)

var (
	lintRules string
	lintLang  string
)

var lintCmd = &cobra.Command{
	Use:   "lint FILE...",
	Short: "Report syntax nodes of source files that pass rules",
	Long: `Report syntax nodes of source files that pass rules.

Rules come from --rules; their selectors are Tree-sitter queries. Without
rules the built-in rules of the language are used. The language is taken
from --lang or detected from each file extension; files in other languages
are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var custom []rules.Rule
		if path := stringFlag(cmd, "rules", lintRules, cfg.Rules); path != "" {
			var err error
			if custom, err = loadRules(path); err != nil {
				return err
			}
		}
		forced := stringFlag(cmd, "lang", lintLang, cfg.Language)

		problems := 0
		for _, file := range args {
			lang := forced
			if lang == "" {
				name, _, ok := ingest.DetectLanguageFromExt(filepath.Ext(file))
				if !ok {
					slog.Warn("skipping file with unknown language", "file", file)
					continue
				}
				lang = name
			}

			rs := custom
			if rs == nil {
				rs = linter.DefaultRules(lang)
			}

			content, err := readFile(file)
			if err != nil {
				return err
			}
			diags, err := linter.Lint(cmd.Context(), content, lang, rs)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			for _, d := range diags {
				if d.Rule == linter.SyntaxRule {
					slog.Warn("syntax error", "file", file, "line", d.Line+1, "column", d.Column+1)
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s:%s\n", file, d); err != nil {
					return err
				}
			}
			problems += len(diags)
		}

		if problems > 0 {
			return fmt.Errorf("%d problem(s) found", problems)
		}
		return nil
	},
}

func init() {
	lintCmd.Flags().StringVarP(&lintRules, "rules", "r", "", "Rule file (.hcl, .json, .yaml)")
	lintCmd.Flags().StringVar(&lintLang, "lang", "", "Language of all files (default: detect from extension)")
	rootCmd.AddCommand(lintCmd)
}

package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	is "github.com/syntax-tree/unist-util-is"
	"github.com/syntax-tree/unist-util-is/api"
	"github.com/syntax-tree/unist-util-is/internal/index"
	"github.com/syntax-tree/unist-util-is/internal/ingest"
	"github.com/syntax-tree/unist-util-is/internal/report"
	"github.com/syntax-tree/unist-util-is/internal/rules"
)

// reportWriter is the part of report.SQLiteWriter select uses.
type reportWriter interface {
	Write(m report.Match) error
	WriteIndex(x *index.Index) error
	Close() error
}

// newReportWriter opens the --db report. Tests replace it.
var newReportWriter = func(dbPath string) (reportWriter, error) {
	return report.NewSQLiteWriter(dbPath)
}

var (
	selectRules    string
	selectTest     string
	selectSelector string
	selectDB       string
	selectAll      string
)

var selectCmd = &cobra.Command{
	Use:   "select FILE.json",
	Short: "Print the nodes of a JSON tree that pass each rule",
	Long: `Print the nodes of a JSON tree that pass each rule, one
"rule<TAB>path" line per match.

Rules come from --rules (HCL, JSON or YAML) or a single --test, which is
named "test". --selector is a JSONPath applied to rules without their own
selector. --all r1,r2 also prints the nodes every listed rule matched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := selectRuleSet(cmd)
		if err != nil {
			return err
		}

		data, err := readFile(args[0])
		if err != nil {
			return err
		}
		tree, err := ingest.ParseJSON(data)
		if err != nil {
			return err
		}
		slog.Debug("parsed tree", "path", args[0], "bytes", len(data))

		// Ordinals of the full walk number the nodes for every rule.
		all, err := tree.Candidates("")
		if err != nil {
			return err
		}
		ordinals := make(map[string]int, len(all))
		for _, c := range all {
			ordinals[c.Path] = c.Ordinal
		}

		var writer reportWriter
		if dbPath := stringFlag(cmd, "db", selectDB, cfg.Database); dbPath != "" {
			_ = os.Remove(dbPath) // Overwrite
			if writer, err = newReportWriter(dbPath); err != nil {
				return err
			}
			// Released on error paths; the success path closes explicitly.
			defer func() {
				if writer != nil {
					_ = writer.Close()
				}
			}()
			slog.Debug("writing report", "db", dbPath)
		}

		defaultSelector := stringFlag(cmd, "selector", selectSelector, cfg.Selector)
		out := cmd.OutOrStdout()
		x := index.New()

		for _, r := range rs {
			selector := r.Selector
			if selector == "" {
				selector = defaultSelector
			}
			candidates := all
			if selector != "" {
				if candidates, err = tree.Candidates(selector); err != nil {
					return fmt.Errorf("rule %s: %w", r.Name, err)
				}
			}

			for _, c := range candidates {
				ok, err := is.Is(c.Node, r.Test, c.Options()...)
				if err != nil {
					return fmt.Errorf("rule %s: %s: %w", r.Name, c.Path, err)
				}
				if !ok {
					continue
				}
				ordinal, known := ordinals[c.Path]
				if !known {
					slog.Warn("skipping match outside the tree walk", "rule", r.Name, "path", c.Path)
					continue
				}
				x.Add(r.Name, uint32(ordinal))
				if _, err := fmt.Fprintf(out, "%s\t%s\n", r.Name, c.Path); err != nil {
					return err
				}
				if writer != nil {
					m := report.Match{Rule: r.Name, Ordinal: ordinal, Path: c.Path, Type: c.NodeType(), Line: c.Line}
					if err := writer.Write(m); err != nil {
						return err
					}
				}
			}
			slog.Debug("rule done", "rule", r.Name, "matches", x.Count(r.Name))
		}

		if selectAll != "" {
			names := strings.Split(selectAll, ",")
			if _, err := rules.Select(rs, names...); err != nil {
				return err
			}
			for _, ordinal := range x.All(names...) {
				if _, err := fmt.Fprintf(out, "all\t%s\n", all[ordinal].Path); err != nil {
					return err
				}
			}
		}

		if writer != nil {
			if err := writer.WriteIndex(x); err != nil {
				return err
			}
			w := writer
			writer = nil
			if err := w.Close(); err != nil {
				return fmt.Errorf("close report: %w", err)
			}
		}
		return nil
	},
}

func selectRuleSet(cmd *cobra.Command) ([]rules.Rule, error) {
	if cmd.Flags().Changed("test") {
		value, err := parseJSONFlag("test", selectTest)
		if err != nil {
			return nil, err
		}
		return rules.Compile([]api.Rule{{Name: "test", Test: value}})
	}
	path := stringFlag(cmd, "rules", selectRules, cfg.Rules)
	if path == "" {
		return nil, fmt.Errorf("select needs --rules or --test")
	}
	return loadRules(path)
}

func init() {
	selectCmd.Flags().StringVarP(&selectRules, "rules", "r", "", "Rule file (.hcl, .json, .yaml)")
	selectCmd.Flags().StringVar(&selectTest, "test", "", "Single test as JSON instead of a rule file")
	selectCmd.Flags().StringVar(&selectSelector, "selector", "", "JSONPath for rules without a selector (default: every value)")
	selectCmd.Flags().StringVar(&selectDB, "db", "", "Write matches to this SQLite database")
	selectCmd.Flags().StringVar(&selectAll, "all", "", "Comma separated rules whose common matches are printed")
	rootCmd.AddCommand(selectCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syntax-tree/unist-util-is/internal/report"
)

var reportRule string

var reportCmd = &cobra.Command{
	Use:   "report [DB]",
	Short: "Print the matches stored in a select report",
	Long: `Print the matches stored in a select report, one "rule<TAB>path" line
per match, read through the rule_nodes virtual table. The database defaults
to the configured one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := cfg.Database
		if len(args) == 1 {
			dbPath = args[0]
		}
		if dbPath == "" {
			return fmt.Errorf("report needs a database path")
		}

		r, err := report.OpenReader(dbPath)
		if err != nil {
			return err
		}
		defer func() { _ = r.Close() }()

		query := "SELECT rule, path FROM rule_nodes ORDER BY rule, ordinal"
		var queryArgs []any
		if reportRule != "" {
			query = "SELECT rule, path FROM rule_nodes WHERE rule = ? ORDER BY ordinal"
			queryArgs = append(queryArgs, reportRule)
		}

		rows, err := r.Query(query, queryArgs...)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var rule, path string
			if err := rows.Scan(&rule, &path); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", rule, path); err != nil {
				return err
			}
		}
		return rows.Err()
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportRule, "rule", "", "Only print matches of this rule")
	rootCmd.AddCommand(reportCmd)
}

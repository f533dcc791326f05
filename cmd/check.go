package cmd

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	is "github.com/syntax-tree/unist-util-is"
)

var (
	checkNode   string
	checkTest   string
	checkIndex  int
	checkParent string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check a single JSON node against a JSON test",
	Long: `Check a single JSON node against a JSON test.

The test is null, a type string, an object of properties, or a list of
those. --index and --parent describe the node's position and must be
given together.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		node, err := parseJSONFlag("node", checkNode)
		if err != nil {
			return err
		}
		testValue, err := parseJSONFlag("test", checkTest)
		if err != nil {
			return err
		}
		test, err := is.FromValue(testValue)
		if err != nil {
			return err
		}

		var opts []is.Option
		if cmd.Flags().Changed("index") {
			opts = append(opts, is.WithIndex(checkIndex))
		}
		if cmd.Flags().Changed("parent") {
			parent, err := parseJSONFlag("parent", checkParent)
			if err != nil {
				return err
			}
			opts = append(opts, is.WithParent(parent))
		}

		ok, err := is.Is(node, test, opts...)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), ok)
		return err
	},
}

func parseJSONFlag(name, value string) (any, error) {
	if value == "" {
		return nil, nil
	}
	v, err := oj.ParseString(value)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return v, nil
}

func init() {
	checkCmd.Flags().StringVar(&checkNode, "node", "", "Node as JSON")
	checkCmd.Flags().StringVar(&checkTest, "test", "", "Test as JSON (default: any node)")
	checkCmd.Flags().IntVar(&checkIndex, "index", 0, "Index of the node in its parent")
	checkCmd.Flags().StringVar(&checkParent, "parent", "", "Parent node as JSON")
	rootCmd.AddCommand(checkCmd)
}

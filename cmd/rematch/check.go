package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compile every pattern of a schema",
	Long: `Load the schema, compile every pattern with the selected engine and
report patterns that cannot bind their shape because they have fewer capture
groups than the shape has fields.

Examples:
  rematch check --schema events.yaml
  rematch check --schema events.yaml --engine regexp2`,
	RunE: runCheck,
}

var checkStrict bool

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "treat group count issues as errors")
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	parsers, err := s.schema.Compile(s.parserOpts())
	if err != nil {
		return err
	}

	issues := 0
	for _, name := range s.schema.Names() {
		for _, issue := range parsers[name].GroupIssues() {
			issues++
			logger.Warn().
				Stringer("pattern", issue.Pattern.ID).
				Int("groups", issue.Groups).
				Int("fields", issue.Fields).
				Msg("pattern cannot bind every field")
		}
	}

	stats := s.registry.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "%d types, %d patterns compiled, %d issues\n",
		len(parsers), stats.Builds, issues)

	if checkStrict && issues > 0 {
		return fmt.Errorf("%d patterns cannot bind their shape", issues)
	}
	return nil
}

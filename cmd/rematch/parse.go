package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	rematch "github.com/SimonDaKappa/go-rematch"
)

var parseCmd = &cobra.Command{
	Use:   "parse [input...]",
	Short: "Parse inputs into JSON records",
	Long: `Parse each input with the parser of one schema type and print one JSON
record per input on stdout.

Inputs are the positional arguments, or the lines of stdin when no argument
is given. With --field, every input is a JSON document and the string to
parse is taken from the given path (gjson syntax).

Inputs that fail to parse are logged to stderr and skipped; the command
exits with status 1 if any input failed.

Examples:
  rematch parse --type Test "b 42" "c = 7"
  tail -f app.log | rematch parse --type Event
  rematch parse --type Event --field event.message < app.ndjson`,
	RunE: runParseCmd,
}

var (
	parseType  string
	parseField string
)

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseType, "type", "t", "", "schema type to parse into (required)")
	parseCmd.Flags().StringVarP(&parseField, "field", "f", "", "gjson path of the string to parse in JSON inputs")
	_ = parseCmd.MarkFlagRequired("type")
}

func runParseCmd(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	parser, err := s.schema.Parser(parseType, s.parserOpts())
	if err != nil {
		return err
	}

	p := &lineParser{
		parser: parser,
		field:  parseField,
		out:    cmd.OutOrStdout(),
		logger: logger,
	}
	stats, err := p.run(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	logger.Debug().
		Int("parsed", stats.Parsed).
		Int("failed", stats.Failed).
		Msg("parse finished")

	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d inputs failed to parse", stats.Failed, stats.Parsed+stats.Failed)
	}
	return nil
}

// parseStats counts the outcome of a parse run.
type parseStats struct {
	Parsed int
	Failed int
}

// lineParser feeds inputs through a parser and writes JSON records.
type lineParser struct {
	parser *rematch.Parser
	field  string
	out    io.Writer
	logger zerolog.Logger
}

// run parses args, or every line of in when args is empty.
func (lp *lineParser) run(in io.Reader, args []string) (parseStats, error) {
	var stats parseStats
	enc := json.NewEncoder(lp.out)

	handle := func(lineNo int, raw string) error {
		input, ok := lp.extract(lineNo, raw)
		if !ok {
			stats.Failed++
			return nil
		}

		value, err := lp.parser.Parse(input)
		if err != nil {
			lp.logFailure(lineNo, input, err)
			stats.Failed++
			return nil
		}

		stats.Parsed++
		return enc.Encode(value)
	}

	if len(args) > 0 {
		for i, arg := range args {
			if err := handle(i+1, arg); err != nil {
				return stats, err
			}
		}
		return stats, nil
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := handle(lineNo, scanner.Text()); err != nil {
			return stats, err
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read input: %w", err)
	}
	return stats, nil
}

// extract returns the string to parse from one raw input.
func (lp *lineParser) extract(lineNo int, raw string) (string, bool) {
	if lp.field == "" {
		return raw, true
	}

	if !gjson.Valid(raw) {
		lp.logger.Warn().Int("line", lineNo).Msg("input is not valid JSON")
		return "", false
	}
	result := gjson.Get(raw, lp.field)
	if !result.Exists() {
		lp.logger.Warn().Int("line", lineNo).Str("field", lp.field).Msg("field not found in input")
		return "", false
	}
	return result.String(), true
}

func (lp *lineParser) logFailure(lineNo int, input string, err error) {
	event := lp.logger.Warn().Int("line", lineNo).Str("input", input)

	var (
		bindErr  *rematch.BindError
		matchErr *rematch.MatchError
	)
	switch {
	case errors.As(err, &bindErr):
		event = event.
			Stringer("pattern", bindErr.Pattern).
			Str("variant", bindErr.Variant).
			Str("field", bindErr.Field()).
			Stringer("reason", bindErr.Kind)
	case errors.As(err, &matchErr):
		event = event.
			Stringer("pattern", matchErr.Pattern).
			Str("reason", "search failed")
	}
	event.Err(err).Msg("input failed to parse")
}

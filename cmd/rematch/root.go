package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	rematch "github.com/SimonDaKappa/go-rematch"
	"github.com/SimonDaKappa/go-rematch/metrics"
)

var (
	// Global flags
	schemaFile  string
	engineName  string
	logLevel    string
	metricsFile string
	timeout     time.Duration

	logger zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rematch",
	Short: "Parse text into typed records with regular-expression schemas",
	Long: `rematch decodes strings into structs and enums described by a YAML
schema. Each type (or enum variant) carries one or more regular expressions
whose capture groups are bound, in order, to the type's fields.

Examples:
  rematch check --schema events.yaml
  rematch parse --schema events.yaml --type Event < app.log
  rematch parse --schema events.yaml --type Event --field msg < app.ndjson`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := zerolog.ParseLevel(strings.ToLower(logLevel))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&schemaFile, "schema", "s", "rematch.yaml", "schema file path")
	rootCmd.PersistentFlags().StringVarP(&engineName, "engine", "e", rematch.StdEngineName, "regex engine (std, regexp2)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "match-timeout", 0, "regexp2 search timeout per pattern, 0 for none")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
}

// session is the state shared by subcommands: the loaded schema and the
// registry its patterns are compiled into.
type session struct {
	schema   *rematch.Schema
	registry *rematch.PatternRegistry
	metrics  *metrics.Observer
}

func openSession() (*session, error) {
	engine, err := rematch.EngineByName(engineName)
	if err != nil {
		return nil, err
	}
	if r2, ok := engine.(rematch.Regexp2Engine); ok {
		r2.Timeout = timeout
		engine = r2
	}

	schema, err := rematch.LoadSchemaFile(schemaFile, rematch.LoadSchemaOpts{})
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("schema", schemaFile).
		Strs("types", schema.Names()).
		Msg("schema loaded")

	s := &session{schema: schema}
	observers := rematch.Observers{logObserver{logger: logger}}
	if metricsFile != "" {
		s.metrics = metrics.NewObserver(metrics.Config{})
		observers = append(observers, s.metrics)
	}

	s.registry = rematch.NewPatternRegistry(rematch.PatternRegistryOpts{
		Engine:   engine,
		Observer: observers,
	})
	return s, nil
}

func (s *session) parserOpts() rematch.ParserOpts {
	return rematch.ParserOpts{Registry: s.registry}
}

// close flushes metrics, if enabled.
func (s *session) close() {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.WriteTextfile(metricsFile); err != nil {
		logger.Error().Err(err).Str("path", metricsFile).Msg("writing metrics failed")
		return
	}
	logger.Debug().Str("path", metricsFile).Msg("metrics written")
}

package main

import (
	"time"

	"github.com/rs/zerolog"

	rematch "github.com/SimonDaKappa/go-rematch"
)

// logObserver logs pattern registry activity at debug level.
type logObserver struct {
	logger zerolog.Logger
}

func (lo logObserver) PatternCompiled(id rematch.PatternID, took time.Duration, err error) {
	if err != nil {
		lo.logger.Error().Err(err).Stringer("pattern", id).Msg("pattern failed to compile")
		return
	}
	lo.logger.Debug().Stringer("pattern", id).Dur("took", took).Msg("pattern compiled")
}

func (lo logObserver) PatternReused(id rematch.PatternID) {
	lo.logger.Trace().Stringer("pattern", id).Msg("pattern reused")
}

package main

import (
	"io"
	"time"

	"github.com/9seconds/geotable/geotable"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

type logger struct {
	loadLog     zerolog.Logger
	snapshotLog zerolog.Logger
	appLog      zerolog.Logger
}

func (l *logger) LoadInfo(origin geotable.Origin, path string, entries int, elapsed time.Duration) {
	l.loadLog.Info().
		Str("origin", string(origin)).
		Str("path", path).
		Int("entries", entries).
		Dur("elapsed", elapsed).
		Msgf("Loaded %s ranges", humanize.Comma(int64(entries)))
}

func (l *logger) RecordSkipped(path string, line int, reason string) {
	l.loadLog.Debug().
		Str("path", path).
		Int("line", line).
		Str("reason", reason).
		Msg("Record was skipped")
}

func (l *logger) SnapshotError(path string, err error) {
	l.snapshotLog.Warn().Str("path", path).Err(err).Msg("Snapshot is not usable")
}

func newLogger(w io.Writer, debug bool) *logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}

	makeLog := func(eventName string) zerolog.Logger {
		return zerolog.New(w).Level(level).With().Timestamp().Str("event_name", eventName).Logger()
	}

	return &logger{
		loadLog:     makeLog("load"),
		snapshotLog: makeLog("snapshot"),
		appLog:      makeLog("app"),
	}
}

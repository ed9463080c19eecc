package geotable

import "time"

// Logger receives events of table loading. Library never writes logs by
// itself, an application decides how to present them.
type Logger interface {
	LoadInfo(origin Origin, path string, entries int, elapsed time.Duration)
	RecordSkipped(path string, line int, reason string)
	SnapshotError(path string, err error)
}

type noopLogger struct{}

func (noopLogger) LoadInfo(Origin, string, int, time.Duration) {}
func (noopLogger) RecordSkipped(string, int, string) {}
func (noopLogger) SnapshotError(string, error) {}

package geotable

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
)

// Loader builds a table either from a binary snapshot or from a text
// source.
//
// Policy is snapshot-first: if a snapshot exists, it is decoded and
// returned. If decoding fails for any reason, loader logs the cause and
// parses the text source instead. Only if the text source cannot be read
// too, the whole load fails with ErrSourceUnavailable.
type Loader struct {
	Fs           afero.Fs
	Logger       Logger
	SourcePath   string
	SnapshotPath string

	// WriteSnapshot makes loader persist a fresh snapshot after each
	// successful parse of the text source.
	WriteSnapshot bool

	// TrustOrder disables Table.Validate. Binary search silently gives
	// wrong answers on unsorted tables so use it only for sources which
	// are known to be correct.
	TrustOrder bool

	// RejectStale makes loader ignore snapshots built from a different
	// version of the text source.
	RejectStale bool
}

// Load returns a table. Loader is stateless so it is ok to call it many
// times.
func (l *Loader) Load() (*Table, error) {
	if table, err := l.LoadSnapshot(); err == nil {
		return table, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		l.logger().SnapshotError(l.snapshotPath(), err)
	}

	table, err := l.LoadText()
	if err != nil {
		return nil, err
	}

	if l.WriteSnapshot {
		if err := l.SaveSnapshot(table); err != nil {
			l.logger().SnapshotError(l.snapshotPath(), err)
		}
	}

	return table, nil
}

// LoadSnapshot is the fast path of Load. It returns an error wrapping
// os.ErrNotExist if there is no snapshot.
func (l *Loader) LoadSnapshot() (*Table, error) {
	path := l.snapshotPath()
	startTime := time.Now()

	if _, err := l.fs().Stat(path); err != nil {
		return nil, fmt.Errorf("cannot stat snapshot: %w", err)
	}

	table, fingerprint, err := ReadSnapshotFile(l.fs(), path)
	if err != nil {
		return nil, err
	}

	if l.RejectStale {
		current, err := sourceFingerprint(l.fs(), l.sourcePath())
		if err == nil && current != fingerprint {
			return nil, fmt.Errorf("%w: built for source %+v, current one is %+v",
				ErrStaleSnapshot, fingerprint, current)
		}
	}

	if !l.TrustOrder {
		if err := table.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
		}
	}

	l.logger().LoadInfo(OriginSnapshot, path, table.Len(), time.Since(startTime))

	return table, nil
}

// LoadText parses the text source ignoring any snapshot.
func (l *Loader) LoadText() (*Table, error) {
	path := l.sourcePath()
	startTime := time.Now()

	source, err := openSource(l.fs(), path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	defer source.Close()

	table, err := NewRangeReader(source, path, l.logger()).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot parse %s: %v", ErrSourceUnavailable, path, err)
	}

	if !l.TrustOrder {
		if err := table.Validate(); err != nil {
			return nil, fmt.Errorf("source %s is not usable: %w", path, err)
		}
	}

	l.logger().LoadInfo(OriginText, path, table.Len(), time.Since(startTime))

	return table, nil
}

// SaveSnapshot persists a table into the snapshot path, stamping it with
// a fingerprint of the current text source.
func (l *Loader) SaveSnapshot(table *Table) error {
	fingerprint, _ := sourceFingerprint(l.fs(), l.sourcePath())

	if err := WriteSnapshotFile(l.fs(), l.snapshotPath(), table, fingerprint); err != nil {
		return fmt.Errorf("cannot write snapshot: %w", err)
	}

	return nil
}

func (l *Loader) fs() afero.Fs {
	if l.Fs == nil {
		return afero.NewOsFs()
	}

	return l.Fs
}

func (l *Loader) logger() Logger {
	if l.Logger == nil {
		return noopLogger{}
	}

	return l.Logger
}

func (l *Loader) sourcePath() string {
	if l.SourcePath == "" {
		return DefaultSourcePath
	}

	return l.SourcePath
}

func (l *Loader) snapshotPath() string {
	if l.SnapshotPath == "" {
		return DefaultSnapshotPath
	}

	return l.SnapshotPath
}

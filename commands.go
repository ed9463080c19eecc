package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/9seconds/geotable/geotable"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
)

const lookupStdinMarker = "-"

// runLookup resolves all queries and writes results as JSON lines in
// the same order. Query "-" means 'read queries from stdin, one per
// line'.
func runLookup(ctx context.Context, resolver *geotable.Resolver, queries []string, stdin io.Reader, out io.Writer) error {
	expanded := make([]string, 0, len(queries))

	for _, v := range queries {
		if v != lookupStdinMarker {
			expanded = append(expanded, v)

			continue
		}

		scanner := bufio.NewScanner(stdin)

		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				expanded = append(expanded, line)
			}
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("cannot read queries: %w", err)
		}
	}

	results, err := resolver.ResolveAll(ctx, expanded)
	if err != nil {
		return fmt.Errorf("cannot resolve queries: %w", err)
	}

	encoder := json.NewEncoder(out)

	for i := range results {
		if err := encoder.Encode(&results[i]); err != nil {
			return fmt.Errorf("cannot write a result: %w", err)
		}
	}

	return nil
}

// runSnapshot parses a text source ignoring any existing snapshot and
// writes a fresh one.
func runSnapshot(fs afero.Fs, loader *geotable.Loader, out io.Writer) error {
	table, err := loader.LoadText()
	if err != nil {
		return fmt.Errorf("cannot load a text source: %w", err)
	}

	if err := loader.SaveSnapshot(table); err != nil {
		return err
	}

	stat, err := fs.Stat(loader.SnapshotPath)
	if err != nil {
		return fmt.Errorf("cannot stat a snapshot: %w", err)
	}

	fmt.Fprintf(out, "Snapshot %s is written: %s ranges, %s\n",
		loader.SnapshotPath,
		humanize.Comma(int64(table.Len())),
		humanize.Bytes(uint64(stat.Size())))

	return nil
}

type statsOutput struct {
	Usage      *geotable.UsageStats `json:"usage"`
	FirstRange *geotable.QueryRange `json:"first_range,omitempty"`
	LastRange  *geotable.QueryRange `json:"last_range,omitempty"`
}

func runStats(table *geotable.Table, resolver *geotable.Resolver, out io.Writer) error {
	output := statsOutput{
		Usage: resolver.UsageStats(),
	}

	if table.Len() > 0 {
		first := table.At(0)
		last := table.At(table.Len() - 1)
		output.FirstRange = &geotable.QueryRange{
			Start: geotable.FormatAddr(first.Start),
			End:   geotable.FormatAddr(first.End),
		}
		output.LastRange = &geotable.QueryRange{
			Start: geotable.FormatAddr(last.Start),
			End:   geotable.FormatAddr(last.End),
		}
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(&output); err != nil {
		return fmt.Errorf("cannot write stats: %w", err)
	}

	return nil
}

package geotable

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// RangeReader reads address ranges from a comma-delimited text source.
//
// Each record has 10 positional fields: start, end, country code,
// country, province, city, latitude, longitude, zip code, timezone.
// Start and end are already integers, not dotted-quad addresses.
//
// Records with fewer fields are skipped. Records with broken start or end
// are skipped as well and reported to the logger. Order of the rest is
// kept intact. A stray quote inside an unquoted field is kept as a
// literal character.
type RangeReader struct {
	reader *csv.Reader
	logger Logger
	path   string
}

// Read returns a next valid range. io.EOF marks the end of the source.
func (r *RangeReader) Read() (AddressRange, error) {
	for {
		record, err := r.reader.Read()

		switch {
		case errors.Is(err, io.EOF):
			return AddressRange{}, io.EOF
		case err != nil:
			return AddressRange{}, fmt.Errorf("cannot read a record: %w", err)
		case len(record) < RangeFieldsCount:
			continue
		}

		rng, err := makeAddressRange(record)
		if err == nil {
			return rng, nil
		}

		line, _ := r.reader.FieldPos(0)
		r.logger.RecordSkipped(r.path, line, err.Error())
	}
}

// ReadAll consumes the whole source and returns a table in source order.
func (r *RangeReader) ReadAll() (*Table, error) {
	ranges := []AddressRange{}

	for {
		rng, err := r.Read()

		switch {
		case errors.Is(err, io.EOF):
			table := NewTable(ranges)
			table.origin = OriginText

			return table, nil
		case err != nil:
			return nil, err
		}

		ranges = append(ranges, rng)
	}
}

func makeAddressRange(record []string) (AddressRange, error) {
	start, err := strconv.ParseUint(record[0], 10, 32)
	if err != nil {
		return AddressRange{}, fmt.Errorf("incorrect start %q: %w", record[0], err)
	}

	end, err := strconv.ParseUint(record[1], 10, 32)
	if err != nil {
		return AddressRange{}, fmt.Errorf("incorrect end %q: %w", record[1], err)
	}

	if start > end {
		return AddressRange{}, fmt.Errorf("start %d is greater than end %d", start, end)
	}

	rv := AddressRange{
		Start: uint32(start),
		End:   uint32(end),
	}

	for i, v := range rv.Info.fields() {
		*v = record[i+2]
	}

	return rv, nil
}

// NewRangeReader wraps a text source. Path is used only to report
// skipped records, it can be empty.
func NewRangeReader(source io.Reader, path string, logger Logger) *RangeReader {
	reader := csv.NewReader(bufio.NewReader(source))
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true
	reader.LazyQuotes = true

	if logger == nil {
		logger = noopLogger{}
	}

	return &RangeReader{
		reader: reader,
		logger: logger,
		path:   path,
	}
}

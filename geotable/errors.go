package geotable

import (
	"encoding/json"
	"errors"
)

var (
	// ErrInvalidFormat is returned if a dotted-quad address is malformed:
	// wrong number of components or a component which is not a number.
	ErrInvalidFormat = errors.New("invalid IP address format")

	// ErrNotFound is returned if an address is well-formed but no range
	// of the table covers it. This is a normal outcome for private and
	// reserved networks.
	ErrNotFound = errors.New("IP address not found")

	// ErrCorruptSnapshot is returned if a binary snapshot cannot be
	// decoded: truncated data, bad magic, unknown version, checksum
	// mismatch and so on. Loader recovers from it by parsing a text
	// source.
	ErrCorruptSnapshot = errors.New("snapshot is corrupted")

	// ErrStaleSnapshot is returned if a snapshot was built from a
	// different version of the text source.
	ErrStaleSnapshot = errors.New("snapshot is stale")

	// ErrSourceUnavailable is returned if neither a snapshot nor a text
	// source can be read. There is no table to serve queries from.
	ErrSourceUnavailable = errors.New("source is unavailable")

	// ErrUnorderedTable is returned if ranges are not sorted by start
	// address or overlap each other. Binary search gives wrong answers
	// on such tables.
	ErrUnorderedTable = errors.New("ranges are unordered or overlapping")

	ErrResolverShutdown = errors.New("resolver was shutdown")
	ErrContextIsClosed  = errors.New("context is closed")
)

type jsonQueryError struct {
	Message string `json:"message"`
	Context string `json:"context"`
}

// QueryError is a per-query failure. It is never fatal: a caller gets
// it as a part of the result and can continue with the next address.
type QueryError struct {
	Query string
	err   error
}

func (q *QueryError) Message() string {
	if q == nil || q.err == nil {
		return ""
	}

	switch {
	case errors.Is(q.err, ErrNotFound):
		return ErrNotFound.Error()
	case errors.Is(q.err, ErrInvalidFormat):
		return ErrInvalidFormat.Error()
	}

	return q.err.Error()
}

func (q *QueryError) Unwrap() error {
	if q == nil {
		return nil
	}

	return q.err
}

func (q *QueryError) Error() string {
	switch {
	case q == nil:
		return ""
	case q.err != nil && q.Query != "":
		return q.Query + ": " + q.err.Error()
	case q.err != nil:
		return q.err.Error()
	}

	return q.Query
}

func (q *QueryError) MarshalJSON() ([]byte, error) {
	if q == nil {
		return []byte("null"), nil
	}

	return json.Marshal(&jsonQueryError{
		Message: q.Message(),
		Context: q.Query,
	})
}

func newQueryError(query string, err error) *QueryError {
	return &QueryError{
		Query: query,
		err:   err,
	}
}

// Package geotable resolves IPv4 addresses to geographic metadata using a
// static table of disjoint address ranges.
//
// A table is produced by Loader. Loader prefers a binary snapshot because
// it is an order of magnitude faster to decode than a text source to
// parse. If a snapshot is missing or broken, loader falls back to the text
// source (CSV with integer range bounds) and optionally writes a fresh
// snapshot for the next run.
//
// Table is immutable after creation. Lookup is a binary search so a table
// has to be sorted by start address with no overlaps; Loader validates
// that unless it is asked to trust the source.
//
// Resolver is a convenience facade on top of a table: it accepts textual
// addresses, returns enriched QueryResult and can resolve batches of
// addresses using a worker pool.
package geotable

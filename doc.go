// Geotable is a command line tool to find out where an IPv4 address
// comes from using an offline table of address ranges.
//
// Table is a text file where each line is a range: start and end as
// integers, then country code, country, province, city, latitude,
// longitude, zip code and timezone. Parsing of a big table is slow so
// tool keeps a binary snapshot next to it and uses it on next runs.
//
// Tool is organized into 2 logical parts:
//
// Geotable
//
// geotable package contains everything related to the table: loading,
// snapshots, lookups and a resolver which answers textual queries. It
// does not log and does not print anything by itself.
//
// Main
//
// A main package wires geotable with a config, logging and CLI. By
// default it starts an interactive menu, but it can also resolve a
// batch of addresses (lookup), rebuild a snapshot (snapshot) or show
// table stats (stats).
package main

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/9seconds/geotable/geotable"
	"github.com/dustin/go-humanize"
)

const interactiveBack = "back"

var interactiveBanner = []string{
	"                   _        _     _",
	"  __ _  ___  ___ | |_ __ _| |__ | | ___",
	" / _` |/ _ \\/ _ \\| __/ _` | '_ \\| |/ _ \\",
	"| (_| |  __/ (_) | || (_| | |_) | |  __/",
	" \\__, |\\___|\\___/ \\__\\__,_|_.__/|_|\\___|",
	" |___/",
}

type interactive struct {
	in       io.Reader
	out      io.Writer
	format   formatter
	resolver *geotable.Resolver
	hostIP   func() string
	entries  int
	lines    chan string
}

// Greet shows a banner. It is called before a table is loaded.
func (i *interactive) Greet() {
	i.format.Info(i.out, "\n%s", strings.Repeat("=", 60))

	for _, v := range interactiveBanner {
		i.format.Success(i.out, "%s", v)
	}

	i.format.Info(i.out, "%s", strings.Repeat("=", 60))
	i.format.Success(i.out, "        IP Address Query Tool")
	i.format.Info(i.out, "%s", strings.Repeat("=", 60))
	i.format.Info(i.out, "\nLoading IP database...")
}

// LoadFailed reports that there is no table to query.
func (i *interactive) LoadFailed(err error) {
	i.format.Error(i.out, "Error loading database: %v", err)
}

// Run shows a menu until user exits, input is closed or context is
// cancelled.
func (i *interactive) Run(ctx context.Context) {
	i.lines = make(chan string)

	go i.readLines(ctx)

	i.format.Success(i.out, "Database loaded successfully with %s entries", humanize.Comma(int64(i.entries)))

	for {
		i.format.Success(i.out, "\nMenu:")
		i.format.Success(i.out, "1. Check my IP")
		i.format.Success(i.out, "2. Query IP")
		i.format.Success(i.out, "3. Exit")

		choice, ok := i.prompt(ctx, "\nSelect: ")
		if !ok {
			return
		}

		switch choice {
		case "1":
			i.checkHostIP()

			if _, ok := i.prompt(ctx, "\nPress Enter to continue..."); !ok {
				return
			}
		case "2":
			if !i.queryLoop(ctx) {
				return
			}
		case "3":
			i.format.Success(i.out, "\nGoodbye!")

			return
		default:
			i.format.Error(i.out, "Invalid choice. Enter 1-3.")
		}
	}
}

func (i *interactive) checkHostIP() {
	i.format.Info(i.out, "\nChecking your IP...")

	hostIP := i.hostIP()

	i.format.Success(i.out, "Your IP: %s", hostIP)

	if hostIP == unknownHostIP {
		return
	}

	i.format.Info(i.out, "Querying location...")

	res := i.resolver.Resolve(hostIP)
	if !res.OK() {
		i.format.Error(i.out, "Note: %s", res.Error.Message())
		i.format.Error(i.out, "(Local IPs are usually private)")

		return
	}

	i.format.Success(i.out, "\nLocation:")
	printRangeInfo(i.format, i.out, res.Info)
}

// queryLoop returns false if there is no more input.
func (i *interactive) queryLoop(ctx context.Context) bool {
	i.format.Info(i.out, "\nQuery IP mode (enter '%s' to return)", interactiveBack)

	for {
		query, ok := i.prompt(ctx, "\nIP: ")

		switch {
		case !ok:
			return false
		case strings.EqualFold(query, interactiveBack):
			return true
		}

		if _, err := geotable.ParseAddrStrict(query); err != nil {
			i.format.Error(i.out, "Invalid IP format")

			continue
		}

		res := i.resolver.Resolve(query)
		if !res.OK() {
			i.format.Error(i.out, "Error: %s", res.Error.Message())

			continue
		}

		i.format.Success(i.out, "\nResult:")
		i.format.Success(i.out, "IP: %s", query)
		printRangeInfo(i.format, i.out, res.Info)
	}
}

func (i *interactive) prompt(ctx context.Context, text string) (string, bool) {
	fmt.Fprint(i.out, text)

	if ctx.Err() != nil {
		return "", false
	}

	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-i.lines:
		return strings.TrimSpace(line), ok
	}
}

func (i *interactive) readLines(ctx context.Context) {
	defer close(i.lines)

	scanner := bufio.NewScanner(i.in)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		case i.lines <- scanner.Text():
		}
	}
}

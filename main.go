package main

import (
	"os"

	"github.com/spf13/afero"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

var version = "dev"

var (
	app = kingpin.New(
		"geotable",
		"Offline IPv4 geolocation over a table of address ranges")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("GEOTABLE_DEBUG").
		Bool()
	configPath = app.Flag("config", "Path to the hjson config.").
			Short('c').
			Envar("GEOTABLE_CONFIG").
			String()
	sourcePath = app.Flag("source", "Path to the text source of ranges.").
			Short('s').
			String()
	snapshotPath = app.Flag("snapshot", "Path to the binary snapshot.").
			String()
	noColor = app.Flag("no-color", "Disable colored output.").
		Bool()

	interactiveCommand = app.Command("interactive", "Run an interactive menu.").
				Default()
	lookupCommand = app.Command("lookup", "Resolve given IPs and print JSON lines.")
	lookupIPs     = lookupCommand.Arg("ip", "IP addresses to resolve. Use - to read them from stdin.").
			Required().
			Strings()
	snapshotCommand = app.Command("snapshot", "Parse a text source and write a snapshot.")
	statsCommand    = app.Command("stats", "Load a table and print its stats.")
)

func init() {
	app.Version(version)
}

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	fs := afero.NewOsFs()
	log := newLogger(os.Stderr, *debug)

	conf, err := readConfig(fs, *configPath)
	if err != nil {
		log.appLog.Fatal().Err(err).Msg("Cannot read config")
	}

	if *sourcePath != "" {
		conf.SourcePath = *sourcePath
	}

	if *snapshotPath != "" {
		conf.SnapshotPath = *snapshotPath
	}

	loader := makeLoader(fs, conf, log)

	if command == snapshotCommand.FullCommand() {
		if err := runSnapshot(fs, loader, os.Stdout); err != nil {
			log.appLog.Fatal().Err(err).Msg("Cannot create a snapshot")
		}

		return
	}

	term := &interactive{
		in:     os.Stdin,
		out:    os.Stdout,
		format: newFormatter(conf.GetColor() && !*noColor),
		hostIP: getHostIP,
	}

	if command == interactiveCommand.FullCommand() {
		term.Greet()
	}

	table, err := loader.Load()
	if err != nil {
		if command == interactiveCommand.FullCommand() {
			term.LoadFailed(err)
		}

		log.appLog.Fatal().Err(err).Msg("Cannot load a table")
	}

	resolver, err := makeResolver(table, conf)
	if err != nil {
		log.appLog.Fatal().Err(err).Msg("Cannot create a resolver")
	}

	defer resolver.Shutdown()

	ctx, cancel := makeRootContext()
	defer cancel()

	switch command {
	case lookupCommand.FullCommand():
		err = runLookup(ctx, resolver, *lookupIPs, os.Stdin, os.Stdout)
	case statsCommand.FullCommand():
		err = runStats(table, resolver, os.Stdout)
	case interactiveCommand.FullCommand():
		term.resolver = resolver
		term.entries = table.Len()

		term.Run(ctx)
	}

	if err != nil {
		log.appLog.Error().Err(err).Msg("Command has failed")
		resolver.Shutdown()
		os.Exit(1)
	}
}

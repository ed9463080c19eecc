package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/9seconds/geotable/geotable"
	"github.com/spf13/afero"
)

const unknownHostIP = "Unknown"

func makeRootContext() (context.Context, context.CancelFunc) {
	rootCtx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)

	go func() {
		for range sigChan {
			cancel()
		}
	}()

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	return rootCtx, cancel
}

// getHostIP resolves a hostname of this machine and returns its first
// IPv4 address. Usually it is a private one.
func getHostIP() string {
	hostname, err := os.Hostname()
	if err != nil {
		return unknownHostIP
	}

	addrs, err := net.LookupIP(hostname)
	if err != nil {
		return unknownHostIP
	}

	for _, v := range addrs {
		if ip4 := v.To4(); ip4 != nil {
			return ip4.String()
		}
	}

	return unknownHostIP
}

func makeLoader(fs afero.Fs, conf *config, log geotable.Logger) *geotable.Loader {
	return &geotable.Loader{
		Fs:            fs,
		Logger:        log,
		SourcePath:    conf.GetSourcePath(),
		SnapshotPath:  conf.GetSnapshotPath(),
		WriteSnapshot: conf.GetWriteSnapshot(),
		TrustOrder:    !conf.GetValidateOrder(),
		RejectStale:   conf.GetRejectStale(),
	}
}

func makeResolver(table *geotable.Table, conf *config) (*geotable.Resolver, error) {
	return geotable.NewResolver(table, geotable.ResolverOptions{
		WithCIDRs:      true,
		CacheSize:      conf.GetCacheSize(),
		CacheTTL:       conf.GetCacheTTL(),
		WorkerPoolSize: conf.GetWorkerPoolSize(),
	})
}

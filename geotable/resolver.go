package geotable

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

const (
	DefaultWorkerPoolSize = 64

	workerPoolExpireTime = time.Minute
)

// Querier resolves a single textual address.
type Querier interface {
	Resolve(query string) QueryResult
}

// ResolverOptions are optional parameters of NewResolver. Zero value is a
// perfectly valid set of defaults.
type ResolverOptions struct {
	// Strict makes resolver reject components outside of [0, 255].
	Strict bool

	// WithCIDRs adds a CIDR decomposition of the owning range to each
	// result.
	WithCIDRs bool

	// CacheSize enables caching of query results if it is positive.
	CacheSize uint
	CacheTTL  time.Duration

	WorkerPoolSize int
}

type tableQuerier struct {
	table     *Table
	stats     *UsageStats
	parse     func(string) (uint32, error)
	withCIDRs bool
}

func (t tableQuerier) Resolve(query string) QueryResult {
	rv := QueryResult{IP: query}

	addr, err := t.parse(query)
	if err != nil {
		rv.Error = newQueryError(query, err)
		t.stats.Used(err)

		return rv
	}

	rng, ok := t.table.Find(addr)
	if !ok {
		rv.Error = newQueryError(query, ErrNotFound)
		t.stats.Used(ErrNotFound)

		return rv
	}

	info := rng.Info
	rv.Info = &info
	rv.Range = &QueryRange{
		Start: FormatAddr(rng.Start),
		End:   FormatAddr(rng.End),
	}

	if t.withCIDRs {
		if cidrs, err := rng.CIDRs(); err == nil {
			rv.Range.CIDRs = cidrs
		}
	}

	if country, ok := LookupCountry(info.CountryCode); ok {
		rv.Country = &country
	}

	t.stats.Used(nil)

	return rv
}

// Resolver answers textual queries over an immutable table. It can
// resolve a single address or a batch of them using a worker pool.
type Resolver struct {
	querier    Querier
	stats      *UsageStats
	rwmutex    sync.RWMutex
	closeOnce  sync.Once
	workerPool *ants.PoolWithFunc
	closed     bool
}

type resolveRequest struct {
	idx     int
	query   string
	results []QueryResult
	wg      *sync.WaitGroup
}

// Resolve converts a dotted-quad address and searches the table. Format
// and not-found errors are returned as a part of the result.
func (r *Resolver) Resolve(query string) QueryResult {
	return r.querier.Resolve(query)
}

// Lookup is Resolve for callers which prefer plain errors. It returns
// an error which matches ErrInvalidFormat or ErrNotFound.
func (r *Resolver) Lookup(query string) (RangeInfo, error) {
	res := r.querier.Resolve(query)
	if res.Error != nil {
		return RangeInfo{}, res.Error
	}

	return *res.Info, nil
}

// ResolveAll resolves a batch of queries concurrently. Results go in the
// order of queries. If a context is closed, only results of already
// scheduled queries are returned.
func (r *Resolver) ResolveAll(ctx context.Context, queries []string) ([]QueryResult, error) {
	r.rwmutex.RLock()
	defer r.rwmutex.RUnlock()

	if r.closed {
		return nil, ErrResolverShutdown
	}

	rv := make([]QueryResult, len(queries))
	wg := &sync.WaitGroup{}
	scheduled := 0

	for i, v := range queries {
		if err := r.schedule(ctx, i, v, rv, wg); err != nil {
			wg.Wait()

			if err == ErrContextIsClosed {
				break
			}

			return nil, err
		}

		scheduled++
	}

	wg.Wait()

	return rv[:scheduled], nil
}

func (r *Resolver) schedule(ctx context.Context, idx int, query string, results []QueryResult, wg *sync.WaitGroup) error {
	select {
	case <-ctx.Done():
		return ErrContextIsClosed
	default:
	}

	wg.Add(1)

	req := &resolveRequest{
		idx:     idx,
		query:   query,
		results: results,
		wg:      wg,
	}

	if err := r.workerPool.Invoke(req); err != nil {
		wg.Done()

		return fmt.Errorf("cannot schedule a task: %w", err)
	}

	return nil
}

func (r *Resolver) resolveTask(args interface{}) {
	req := args.(*resolveRequest)
	defer req.wg.Done()

	req.results[req.idx] = r.querier.Resolve(req.query)
}

func (r *Resolver) UsageStats() *UsageStats {
	return r.stats
}

// Shutdown releases a worker pool and a cache. Resolve keeps working
// after that, ResolveAll returns ErrResolverShutdown.
func (r *Resolver) Shutdown() {
	r.rwmutex.Lock()
	defer r.rwmutex.Unlock()

	r.closed = true

	r.closeOnce.Do(func() {
		r.workerPool.Release()

		if closer, ok := r.querier.(io.Closer); ok {
			closer.Close() // nolint: errcheck
		}
	})
}

func NewResolver(table *Table, opts ResolverOptions) (*Resolver, error) {
	stats := newUsageStats(table)
	querier := tableQuerier{
		table:     table,
		stats:     stats,
		parse:     ParseAddr,
		withCIDRs: opts.WithCIDRs,
	}

	if opts.Strict {
		querier.parse = ParseAddrStrict
	}

	rv := &Resolver{
		querier: querier,
		stats:   stats,
	}

	if opts.CacheSize > 0 {
		cached, err := NewCachingQuerier(querier, opts.CacheSize, opts.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("cannot create a cache: %w", err)
		}

		rv.querier = cached
	}

	poolSize := opts.WorkerPoolSize
	if poolSize <= 0 {
		poolSize = DefaultWorkerPoolSize
	}

	pool, err := ants.NewPoolWithFunc(poolSize, rv.resolveTask,
		ants.WithExpiryDuration(workerPoolExpireTime))
	if err != nil {
		return nil, fmt.Errorf("cannot create a worker pool: %w", err)
	}

	rv.workerPool = pool

	return rv, nil
}

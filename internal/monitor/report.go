package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/revittco/dsmon/internal/counters"
	"golang.org/x/sync/errgroup"
)

// DateLayout is the timestamp format of a report.
const DateLayout = "2006-01-02 15:04:05"

// Report is the database health report of one server instance.
type Report struct {
	Date     time.Time
	DBCache  *DBCacheStats  // bdb only
	NDNCache *NDNCacheStats // only when enabled and reported
	Backends []BackendReport
}

// BackendReport holds the cache stats of one backend. Engine carries the
// fields only some database implementations report.
type BackendReport struct {
	Name       string
	Suffix     string
	EntryCache CacheStats
	Engine     EngineSpecific
	Indexes    []IndexStats
}

// EngineSpecific is implemented by the per-engine backend payloads.
type EngineSpecific interface {
	Engine() counters.Engine
}

// BDBBackendStats are the backend stats only the bdb engine reports.
type BDBBackendStats struct {
	DNCache CacheStats
}

func (*BDBBackendStats) Engine() counters.Engine { return counters.EngineBDB }

// DNCache returns the backend's DN cache stats, if its engine has one.
func (b *BackendReport) DNCache() (CacheStats, bool) {
	if bdb, ok := b.Engine.(*BDBBackendStats); ok {
		return bdb.DNCache, true
	}
	return CacheStats{}, false
}

// Options selects what a report covers.
type Options struct {
	// Backends is a space separated list of backend names or suffixes;
	// empty means all backends.
	Backends string
	// Indexes adds per-index stats to every backend.
	Indexes bool
}

// AssemblerConfig tunes an Assembler. Zero values pick defaults.
type AssemblerConfig struct {
	Concurrency int
	Logger      *slog.Logger
	Now         func() time.Time
}

// Assembler builds Reports from a counter source.
type Assembler struct {
	src         counters.Source
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// NewAssembler creates an Assembler reading from src.
func NewAssembler(src counters.Source, cfg AssemblerConfig) *Assembler {
	a := &Assembler{
		src:         src,
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger,
		now:         cfg.Now,
	}
	if a.concurrency <= 0 {
		a.concurrency = 4
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Build gathers the counters and assembles a Report. Sections whose
// counters the server does not report are left out; source errors abort
// the report.
func (a *Assembler) Build(ctx context.Context, opts Options) (*Report, error) {
	all, err := a.src.ListBackends(ctx)
	if err != nil {
		return nil, fmt.Errorf("list backends: %w", err)
	}
	selected, err := SelectBackends(all, opts.Backends)
	if err != nil {
		return nil, err
	}

	engine, err := a.src.Engine(ctx)
	if err != nil {
		return nil, fmt.Errorf("read database implementation: %w", err)
	}
	global, err := a.src.GlobalCounters(ctx)
	if err != nil {
		return nil, fmt.Errorf("read ldbm counters: %w", err)
	}

	report := &Report{Date: a.now()}

	if engine == counters.EngineBDB {
		report.DBCache, err = DeriveDBCache(global)
		if err != nil {
			if !errors.Is(err, counters.ErrUnavailable) {
				return nil, fmt.Errorf("database cache: %w", err)
			}
			a.logger.Warn("database cache stats unavailable", "error", err)
		}
	}

	report.NDNCache, err = a.ndnCache(ctx, global)
	if err != nil {
		return nil, err
	}

	report.Backends, err = a.backends(ctx, selected, engine, opts.Indexes)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// ndnCache returns nil when the cache is disabled, or when it is enabled in
// cn=config but the server is not reporting it yet (e.g. not restarted).
func (a *Assembler) ndnCache(ctx context.Context, global *counters.Set) (*NDNCacheStats, error) {
	enabled, err := a.src.FeatureEnabled(ctx, counters.FeatureNDNCache)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", counters.FeatureNDNCache, err)
	}
	if !enabled {
		return nil, nil
	}
	stats, err := DeriveNDNCache(global)
	if err != nil {
		if errors.Is(err, counters.ErrUnavailable) {
			a.logger.Debug("normalized dn cache enabled but not reported", "error", err)
			return nil, nil
		}
		return nil, fmt.Errorf("normalized dn cache: %w", err)
	}
	return stats, nil
}

// backends reads every selected backend concurrently. Each goroutine owns
// one slot of the result, so the order matches selected.
func (a *Assembler) backends(ctx context.Context, selected []counters.Backend, engine counters.Engine, indexes bool) ([]BackendReport, error) {
	out := make([]BackendReport, len(selected))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, be := range selected {
		i, be := i, be
		g.Go(func() error {
			set, err := a.src.BackendCounters(gCtx, be.Name)
			if err != nil {
				return fmt.Errorf("backend %s: %w", be.Name, err)
			}
			rep, err := a.backendReport(be, set, engine, indexes)
			if err != nil {
				return fmt.Errorf("backend %s: %w", be.Name, err)
			}
			out[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Assembler) backendReport(be counters.Backend, set *counters.Set, engine counters.Engine, indexes bool) (BackendReport, error) {
	entry, err := DeriveCacheStats(set, EntryCacheKeys)
	if err != nil {
		return BackendReport{}, fmt.Errorf("entry cache: %w", err)
	}
	rep := BackendReport{
		Name:       be.Name,
		Suffix:     be.Suffix,
		EntryCache: entry,
	}

	if engine == counters.EngineBDB {
		dn, err := DeriveCacheStats(set, DNCacheKeys)
		switch {
		case err == nil:
			rep.Engine = &BDBBackendStats{DNCache: dn}
		case errors.Is(err, counters.ErrUnavailable):
			a.logger.Warn("dn cache stats unavailable", "backend", be.Name, "error", err)
		default:
			return BackendReport{}, fmt.Errorf("dn cache: %w", err)
		}
	}

	if indexes {
		rep.Indexes = GroupIndexStats(set)
	}
	return rep, nil
}

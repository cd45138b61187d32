package monitor

import (
	"strconv"

	"github.com/revittco/dsmon/internal/counters"
)

// DefaultPageSize is assumed for the database cache when the server does not
// report nsslapd-db-mp-pagesize.
const DefaultPageSize = 4096

// CacheStats describes one entry-level cache (entry cache or DN cache).
type CacheStats struct {
	HitRatio     string
	Free         int64
	FreePercent  string
	Count        int64
	AvgEntrySize int64
}

// CacheKeys names the counters a CacheStats is derived from.
type CacheKeys struct {
	HitRatio    string
	CurrentSize string
	MaxSize     string
	Count       string
}

var (
	EntryCacheKeys = CacheKeys{
		HitRatio:    "entrycachehitratio",
		CurrentSize: "currententrycachesize",
		MaxSize:     "maxentrycachesize",
		Count:       "currententrycachecount",
	}
	DNCacheKeys = CacheKeys{
		HitRatio:    "dncachehitratio",
		CurrentSize: "currentdncachesize",
		MaxSize:     "maxdncachesize",
		Count:       "currentdncachecount",
	}
)

// DeriveCacheStats computes free space, free percentage and average entry
// size for the cache described by keys.
func DeriveCacheStats(set *counters.Set, keys CacheKeys) (CacheStats, error) {
	ratio, err := set.String(keys.HitRatio)
	if err != nil {
		return CacheStats{}, err
	}
	current, err := set.Int(keys.CurrentSize)
	if err != nil {
		return CacheStats{}, err
	}
	limit, err := set.Int(keys.MaxSize)
	if err != nil {
		return CacheStats{}, err
	}
	count, err := set.Int(keys.Count)
	if err != nil {
		return CacheStats{}, err
	}

	free := FreeSpace(limit, current)
	return CacheStats{
		HitRatio:     ratio,
		Free:         free,
		FreePercent:  FreePercent(free, limit),
		Count:        count,
		AvgEntrySize: AverageSize(current, count),
	}, nil
}

// FreeSpace returns limit-used, never below zero.
func FreeSpace(limit, used int64) int64 {
	return max(0, limit-used)
}

// FreePercent returns free/limit as a percentage with one decimal, clamped
// to [0, 100]. A non-positive limit yields "0.0".
func FreePercent(free, limit int64) string {
	if limit <= 0 {
		return "0.0"
	}
	pct := float64(free) / float64(limit) * 100
	pct = min(max(pct, 0), 100)
	return strconv.FormatFloat(pct, 'f', 1, 64)
}

// AverageSize returns total/count rounded down, or 0 for an empty cache.
func AverageSize(total, count int64) int64 {
	if count <= 0 {
		return 0
	}
	return total / count
}

// DBCacheStats describes the bdb database (page) cache.
type DBCacheStats struct {
	HitRatio    string
	Free        int64
	FreePercent string
	ROEvicts    string
	PageIn      string
	PageOut     string
}

// DeriveDBCache computes the bdb page cache stats from the global LDBM
// counters. The server tracks occupancy in pages of nsslapd-db-mp-pagesize
// bytes, so free space is the cache size minus pages in use times page size.
func DeriveDBCache(set *counters.Set) (*DBCacheStats, error) {
	size, err := set.Int("nsslapd-db-cache-size-bytes")
	if err != nil {
		return nil, err
	}
	pageSize := int64(DefaultPageSize)
	if set.Has("nsslapd-db-mp-pagesize") {
		if pageSize, err = set.Int("nsslapd-db-mp-pagesize"); err != nil {
			return nil, err
		}
	}
	pages, err := set.Int("nsslapd-db-pages-in-use")
	if err != nil {
		return nil, err
	}

	stats := &DBCacheStats{}
	for _, f := range []struct {
		dst *string
		key string
	}{
		{&stats.HitRatio, "dbcachehitratio"},
		{&stats.PageIn, "dbcachepagein"},
		{&stats.PageOut, "dbcachepageout"},
		{&stats.ROEvicts, "nsslapd-db-page-ro-evict-rate"},
	} {
		if *f.dst, err = set.String(f.key); err != nil {
			return nil, err
		}
	}

	stats.Free = FreeSpace(size, pageSize*pages)
	stats.FreePercent = FreePercent(stats.Free, size)
	return stats, nil
}

// NDNCacheStats describes the server-wide normalized DN cache.
type NDNCacheStats struct {
	HitRatio    string
	Free        int64
	FreePercent string
	Count       string
	Evictions   string
}

// DeriveNDNCache computes the normalized DN cache stats from the global LDBM
// counters.
func DeriveNDNCache(set *counters.Set) (*NDNCacheStats, error) {
	ratio, err := set.String("normalizeddncachehitratio")
	if err != nil {
		return nil, err
	}
	current, err := set.Int("currentnormalizeddncachesize")
	if err != nil {
		return nil, err
	}
	limit, err := set.Int("maxnormalizeddncachesize")
	if err != nil {
		return nil, err
	}
	count, err := set.String("currentnormalizeddncachecount")
	if err != nil {
		return nil, err
	}
	evictions, err := set.String("normalizeddncacheevictions")
	if err != nil {
		return nil, err
	}

	free := FreeSpace(limit, current)
	return &NDNCacheStats{
		HitRatio:    ratio,
		Free:        free,
		FreePercent: FreePercent(free, limit),
		Count:       count,
		Evictions:   evictions,
	}, nil
}

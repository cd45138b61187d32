package monitor

import (
	"strings"

	"github.com/revittco/dsmon/internal/counters"
)

// IndexMetric is one of the per-index-file counters a backend reports.
type IndexMetric int

const (
	MetricFileName IndexMetric = iota + 1
	MetricCacheHit
	MetricCacheMiss
	MetricPageIn
	MetricPageOut
)

var indexMetricPrefixes = []struct {
	prefix string
	metric IndexMetric
}{
	{"dbfilename-", MetricFileName},
	{"dbfilecachehit-", MetricCacheHit},
	{"dbfilecachemiss-", MetricCacheMiss},
	{"dbfilepagein-", MetricPageIn},
	{"dbfilepageout-", MetricPageOut},
}

func (m IndexMetric) String() string {
	for _, p := range indexMetricPrefixes {
		if p.metric == m {
			return strings.TrimSuffix(p.prefix, "-")
		}
	}
	return "unknown"
}

// ParseIndexKey splits a counter key such as "dbfilecachehit-3" into its
// metric and the index file id it belongs to. ok is false for keys that are
// not per-index counters.
func ParseIndexKey(key string) (metric IndexMetric, fileID string, ok bool) {
	lower := strings.ToLower(key)
	for _, p := range indexMetricPrefixes {
		if id, found := strings.CutPrefix(lower, p.prefix); found {
			return p.metric, id, true
		}
	}
	return 0, "", false
}

// IndexStats holds the cache and paging counters of one index file.
type IndexStats struct {
	Name      string
	CacheHit  string
	CacheMiss string
	PageIn    string
	PageOut   string
}

// GroupIndexStats rebuilds per-index records from a backend's flat
// dbfile* counters. A record is opened by its file-name counter and
// records are returned in the order those counters were delivered;
// metrics for a file id that never gets a file-name counter are dropped.
func GroupIndexStats(set *counters.Set) []IndexStats {
	byID := make(map[string]*IndexStats)
	opened := make(map[string]bool)
	var named []string

	for _, c := range set.Counters() {
		metric, id, ok := ParseIndexKey(c.Name)
		if !ok || len(c.Values) == 0 {
			continue
		}
		rec, seen := byID[id]
		if !seen {
			rec = &IndexStats{}
			byID[id] = rec
		}
		val := c.Values[0]
		switch metric {
		case MetricFileName:
			if !opened[id] {
				opened[id] = true
				named = append(named, id)
			}
			rec.Name = indexName(val)
		case MetricCacheHit:
			rec.CacheHit = val
		case MetricCacheMiss:
			rec.CacheMiss = val
		case MetricPageIn:
			rec.PageIn = val
		case MetricPageOut:
			rec.PageOut = val
		}
	}

	out := make([]IndexStats, 0, len(named))
	for _, id := range named {
		out = append(out, *byID[id])
	}
	return out
}

// indexName strips the backend directory from a db file path:
// "userroot/cn.db" → "cn.db".
func indexName(path string) string {
	if _, rest, found := strings.Cut(path, "/"); found {
		return rest
	}
	return path
}

package render

import (
	"io"
	"strconv"

	"github.com/revittco/dsmon/internal/monitor"
)

// Report writes r in the requested format.
func Report(w io.Writer, f Format, r *monitor.Report) error {
	if f == JSON {
		return writeJSON(w, reportDocument(r))
	}
	return reportText(w, r)
}

func reportDocument(r *monitor.Report) object {
	doc := object{{"date", r.Date.Format(monitor.DateLayout)}}
	if db := r.DBCache; db != nil {
		doc = append(doc, field{"dbcache", object{
			{"hit_ratio", db.HitRatio},
			{"free", monitor.FormatBytes(db.Free)},
			{"free_percentage", db.FreePercent},
			{"roevicts", db.ROEvicts},
			{"pagein", db.PageIn},
			{"pageout", db.PageOut},
		}})
	}
	if ndn := r.NDNCache; ndn != nil {
		doc = append(doc, field{"ndncache", object{
			{"hit_ratio", ndn.HitRatio},
			{"free", monitor.FormatBytes(ndn.Free)},
			{"free_percentage", ndn.FreePercent},
			{"count", ndn.Count},
			{"evictions", ndn.Evictions},
		}})
	}

	backends := make(object, 0, len(r.Backends))
	for i := range r.Backends {
		be := &r.Backends[i]
		ec := be.EntryCache
		obj := object{
			{"suffix", be.Suffix},
			{"entry_cache_count", strconv.FormatInt(ec.Count, 10)},
			{"entry_cache_free", monitor.FormatBytes(ec.Free)},
			{"entry_cache_free_percentage", ec.FreePercent},
			{"entry_cache_size", monitor.FormatBytes(ec.AvgEntrySize)},
			{"entry_cache_hit_ratio", ec.HitRatio},
		}
		if dn, ok := be.DNCache(); ok {
			obj = append(obj,
				field{"dn_cache_count", strconv.FormatInt(dn.Count, 10)},
				field{"dn_cache_free", monitor.FormatBytes(dn.Free)},
				field{"dn_cache_free_percentage", dn.FreePercent},
				field{"dn_cache_size", monitor.FormatBytes(dn.AvgEntrySize)},
				field{"dn_cache_hit_ratio", dn.HitRatio},
			)
		}
		indexes := make([]object, 0, len(be.Indexes))
		for _, idx := range be.Indexes {
			indexes = append(indexes, object{
				{"name", idx.Name},
				{"cachehit", idx.CacheHit},
				{"cachemiss", idx.CacheMiss},
				{"pagein", idx.PageIn},
				{"pageout", idx.PageOut},
			})
		}
		obj = append(obj, field{"indexes", indexes})
		backends = append(backends, field{be.Name, obj})
	}
	return append(doc, field{"backends", backends})
}

func reportText(w io.Writer, r *monitor.Report) error {
	var t textWriter
	t.line("DB Monitor Report: %s", r.Date.Format(monitor.DateLayout))
	t.line("--------------------------------------------------------")

	if db := r.DBCache; db != nil {
		t.line("Database Cache:")
		t.line(" - Cache Hit Ratio:     %s%%", db.HitRatio)
		t.line(" - Free Space:          %s", monitor.FormatBytes(db.Free))
		t.line(" - Free Percentage:     %s%%", db.FreePercent)
		t.line(" - RO Page Drops:       %s", db.ROEvicts)
		t.line(" - Pages In:            %s", db.PageIn)
		t.line(" - Pages Out:           %s", db.PageOut)
		t.blank()
	}

	if ndn := r.NDNCache; ndn != nil {
		t.line("Normalized DN Cache:")
		t.line(" - Cache Hit Ratio:     %s%%", ndn.HitRatio)
		t.line(" - Free Space:          %s", monitor.FormatBytes(ndn.Free))
		t.line(" - Free Percentage:     %s%%", ndn.FreePercent)
		t.line(" - DN Count:            %s", ndn.Count)
		t.line(" - Evictions:           %s", ndn.Evictions)
		t.blank()
	}

	t.line("Backends:")
	for i := range r.Backends {
		be := &r.Backends[i]
		ec := be.EntryCache
		t.line("  - %s (%s):", be.Suffix, be.Name)
		t.line("    - Entry Cache Hit Ratio:        %s%%", ec.HitRatio)
		t.line("    - Entry Cache Count:            %d", ec.Count)
		t.line("    - Entry Cache Free Space:       %s", monitor.FormatBytes(ec.Free))
		t.line("    - Entry Cache Free Percentage:  %s%%", ec.FreePercent)
		t.line("    - Entry Cache Average Size:     %s", monitor.FormatBytes(ec.AvgEntrySize))
		if dn, ok := be.DNCache(); ok {
			t.line("    - DN Cache Hit Ratio:           %s%%", dn.HitRatio)
			t.line("    - DN Cache Count:               %d", dn.Count)
			t.line("    - DN Cache Free Space:          %s", monitor.FormatBytes(dn.Free))
			t.line("    - DN Cache Free Percentage:     %s%%", dn.FreePercent)
			t.line("    - DN Cache Average Size:        %s", monitor.FormatBytes(dn.AvgEntrySize))
		}
		if len(be.Indexes) > 0 {
			t.line("    - Indexes:")
			for _, idx := range be.Indexes {
				t.line("      - Index:      %s", idx.Name)
				t.line("      - Cache Hit:  %s", idx.CacheHit)
				t.line("      - Cache Miss: %s", idx.CacheMiss)
				t.line("      - Page In:    %s", idx.PageIn)
				t.line("      - Page Out:   %s", idx.PageOut)
				t.blank()
			}
		}
		t.blank()
	}
	return t.flush(w)
}

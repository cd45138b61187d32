package render

import (
	"io"

	"github.com/revittco/dsmon/internal/counters"
	"github.com/revittco/dsmon/internal/monitor"
)

// Status writes raw monitor entries. In JSON a single entry is written as
// {"type":"entry",...}; several are wrapped in {"type":"list","items":[...]}.
func Status(w io.Writer, f Format, sets ...*counters.Set) error {
	if f == JSON {
		if len(sets) == 1 {
			return writeJSON(w, entryDocument(sets[0]))
		}
		items := make([]object, 0, len(sets))
		for _, s := range sets {
			items = append(items, entryDocument(s))
		}
		return writeJSON(w, object{{"type", "list"}, {"items", items}})
	}

	var t textWriter
	for i, s := range sets {
		if i > 0 {
			t.blank()
		}
		t.line("dn: %s", s.DN)
		for _, c := range s.Counters() {
			for _, v := range c.Values {
				t.line("%s: %s", c.Name, v)
			}
		}
	}
	return t.flush(w)
}

func entryDocument(s *counters.Set) object {
	attrs := make(object, 0, s.Len())
	for _, c := range s.Counters() {
		attrs = append(attrs, field{c.Name, c.Values})
	}
	return object{
		{"type", "entry"},
		{"dn", s.DN},
		{"attrs", attrs},
	}
}

// Disks writes the disk space report.
func Disks(w io.Writer, f Format, disks []monitor.DiskUsage) error {
	if f == JSON {
		items := make([]object, 0, len(disks))
		for _, d := range disks {
			items = append(items, object{
				{"mount", d.Mount},
				{"size", monitor.FormatBytes(d.Size)},
				{"used", monitor.FormatBytes(d.Used)},
				{"avail", monitor.FormatBytes(d.Available)},
				{"percent", d.Percent},
			})
		}
		return writeJSON(w, object{{"type", "list"}, {"items", items}})
	}

	var t textWriter
	for _, d := range disks {
		t.line("Partition: %s", d.Mount)
		t.line("Size: %s", monitor.FormatBytes(d.Size))
		t.line("Used Space: %s", monitor.FormatBytes(d.Used))
		t.line("Available Space: %s", monitor.FormatBytes(d.Available))
		t.line("Percentage Used: %s%%", d.Percent)
		t.blank()
	}
	return t.flush(w)
}

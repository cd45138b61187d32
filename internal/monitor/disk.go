package monitor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/revittco/dsmon/internal/counters"
)

// DiskUsage is one partition as reported by the server's disk monitor.
type DiskUsage struct {
	Mount     string
	Size      int64
	Used      int64
	Available int64
	Percent   string
}

// ParseDiskLine parses a dsDisk value such as
//
//	partition="/" size="52576092160" used="25305038848" available="27271053312" use%="48"
func ParseDiskLine(line string) (DiskUsage, error) {
	kv, err := parsePairs(line)
	if err != nil {
		return DiskUsage{}, err
	}
	var d DiskUsage
	var ok bool
	if d.Mount, ok = kv["partition"]; !ok {
		return DiskUsage{}, fmt.Errorf("disk %q: missing partition", line)
	}
	if d.Percent, ok = kv["use%"]; !ok {
		return DiskUsage{}, fmt.Errorf("disk %q: missing use%%", line)
	}
	for _, f := range []struct {
		dst *int64
		key string
	}{
		{&d.Size, "size"},
		{&d.Used, "used"},
		{&d.Available, "available"},
	} {
		v, ok := kv[f.key]
		if !ok {
			return DiskUsage{}, fmt.Errorf("disk %q: missing %s", line, f.key)
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return DiskUsage{}, fmt.Errorf("disk %q: %s: %w", line, f.key, err)
		}
		*f.dst = n
	}
	return d, nil
}

// parsePairs splits `key="value" key2="value 2"` into a map. Quoted values
// may contain spaces.
func parsePairs(s string) (map[string]string, error) {
	out := make(map[string]string)
	rest := strings.TrimSpace(s)
	for rest != "" {
		key, after, found := strings.Cut(rest, "=")
		if !found {
			return nil, fmt.Errorf("malformed pair %q", rest)
		}
		key = strings.TrimSpace(key)
		if strings.HasPrefix(after, `"`) {
			end := strings.IndexByte(after[1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("unterminated value for %s", key)
			}
			out[key] = after[1 : end+1]
			rest = strings.TrimSpace(after[end+2:])
			continue
		}
		val, next, _ := strings.Cut(after, " ")
		out[key] = val
		rest = strings.TrimSpace(next)
	}
	return out, nil
}

// Disks reads and parses every partition the server monitors.
func Disks(ctx context.Context, src counters.Source) ([]DiskUsage, error) {
	lines, err := src.DiskPartitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("read disk monitor: %w", err)
	}
	out := make([]DiskUsage, 0, len(lines))
	for _, line := range lines {
		d, err := ParseDiskLine(line)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

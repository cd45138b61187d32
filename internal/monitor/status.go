package monitor

import (
	"context"
	"fmt"

	"github.com/revittco/dsmon/internal/counters"
)

// ResourceCounters are the cn=monitor attributes describing the server's
// thread and connection usage.
var ResourceCounters = []string{
	"threads",
	"currentconnections",
	"totalconnections",
	"currentconnectionsatmaxthreads",
	"maxthreadsperconnhits",
	"readwaiters",
	"opsinitiated",
	"opscompleted",
}

// ServerStatus returns cn=monitor, optionally reduced to ResourceCounters.
func ServerStatus(ctx context.Context, src counters.StatusSource, justResources bool) (*counters.Set, error) {
	set, err := src.ServerCounters(ctx)
	if err != nil {
		return nil, fmt.Errorf("read server monitor: %w", err)
	}
	if justResources {
		return set.Filter(ResourceCounters...), nil
	}
	return set, nil
}

// BackendStatus returns the monitor entry of the named backend, or of every
// backend when name is empty.
func BackendStatus(ctx context.Context, src counters.Source, name string) ([]*counters.Set, error) {
	all, err := src.ListBackends(ctx)
	if err != nil {
		return nil, fmt.Errorf("list backends: %w", err)
	}
	return instanceStatus(ctx, all, name, src.BackendCounters)
}

// ChainingStatus returns the monitor entry of the named database link, or
// of every link when name is empty.
func ChainingStatus(ctx context.Context, src counters.StatusSource, name string) ([]*counters.Set, error) {
	all, err := src.ListChainingLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chaining links: %w", err)
	}
	return instanceStatus(ctx, all, name, src.ChainingCounters)
}

func instanceStatus(ctx context.Context, all []counters.Backend, name string,
	read func(context.Context, string) (*counters.Set, error)) ([]*counters.Set, error) {
	if name != "" {
		be, err := FindBackend(all, name)
		if err != nil {
			return nil, err
		}
		all = []counters.Backend{be}
	}
	out := make([]*counters.Set, 0, len(all))
	for _, be := range all {
		set, err := read(ctx, be.Name)
		if err != nil {
			return nil, fmt.Errorf("read monitor of %s: %w", be.Name, err)
		}
		out = append(out, set)
	}
	return out, nil
}

package monitor

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/revittco/dsmon/internal/counters"
)

// fakeSource is an in-memory counters.FullSource.
type fakeSource struct {
	backends  []counters.Backend
	engine    counters.Engine
	global    *counters.Set
	perBE     map[string]*counters.Set
	features  map[string]bool
	disks     []string
	server    *counters.Set
	links     []counters.Backend
	perLink   map[string]*counters.Set
	failOn    string
	listErr   error
	beQueries atomic.Int32
}

func (f *fakeSource) ListBackends(context.Context) ([]counters.Backend, error) {
	return f.backends, f.listErr
}

func (f *fakeSource) Engine(context.Context) (counters.Engine, error) { return f.engine, nil }

func (f *fakeSource) GlobalCounters(context.Context) (*counters.Set, error) {
	if f.global == nil {
		return counters.NewSet("cn=monitor,cn=ldbm database"), nil
	}
	return f.global, nil
}

func (f *fakeSource) BackendCounters(_ context.Context, name string) (*counters.Set, error) {
	f.beQueries.Add(1)
	if name == f.failOn {
		return nil, fmt.Errorf("connection reset")
	}
	set, ok := f.perBE[name]
	if !ok {
		return nil, counters.ErrNotFound
	}
	return set, nil
}

func (f *fakeSource) FeatureEnabled(_ context.Context, attr string) (bool, error) {
	return f.features[attr], nil
}

func (f *fakeSource) DiskPartitions(context.Context) ([]string, error) { return f.disks, nil }

func (f *fakeSource) ServerCounters(context.Context) (*counters.Set, error) { return f.server, nil }

func (f *fakeSource) SNMPCounters(context.Context) (*counters.Set, error) {
	return counters.NewSet("cn=snmp,cn=monitor"), nil
}

func (f *fakeSource) ListChainingLinks(context.Context) ([]counters.Backend, error) {
	return f.links, nil
}

func (f *fakeSource) ChainingCounters(_ context.Context, name string) (*counters.Set, error) {
	set, ok := f.perLink[name]
	if !ok {
		return nil, counters.ErrNotFound
	}
	return set, nil
}

// setOf builds a Set from alternating name, value pairs.
func setOf(dn string, kv ...string) *counters.Set {
	s := counters.NewSet(dn)
	for i := 0; i+1 < len(kv); i += 2 {
		s.Add(kv[i], kv[i+1])
	}
	return s
}

package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/revittco/dsmon/internal/counters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
engine: bdb
features:
  nsslapd-ndn-cache-enabled: "on"
global:
  dbcachehitratio: 95
  nsslapd-db-cache-size-bytes: 1000000
backends:
  - name: userroot
    suffix: dc=example,dc=com
    counters:
      dbfilename-1: userroot/id2entry.db
      dbfilecachehit-1: 10
      dbfilename-0: userroot/cn.db
      objectclass: [top, extensibleObject]
  - name: changelog
    suffix: cn=changelog
chaining:
  - name: link1
    suffix: o=remote
    counters:
      dn: cn=monitor,cn=link1,cn=chaining database,cn=plugins,cn=config
      nsaddcount: 3
disks:
  - partition="/" size="100" used="40" available="60" use%="40"
`

func TestParse_CounterOrderAndValues(t *testing.T) {
	s, err := Parse([]byte(sample))
	require.NoError(t, err)
	ctx := context.Background()

	set, err := s.BackendCounters(ctx, "UserRoot")
	require.NoError(t, err)
	got := set.Counters()
	require.Len(t, got, 4)
	assert.Equal(t, "dbfilename-1", got[0].Name)
	assert.Equal(t, "dbfilename-0", got[2].Name)
	assert.Equal(t, []string{"top", "extensibleObject"}, got[3].Values)
	assert.Equal(t, "cn=monitor,cn=userroot,cn=ldbm database,cn=plugins,cn=config", set.DN)

	empty, err := s.BackendCounters(ctx, "changelog")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}

func TestParse_SourceMethods(t *testing.T) {
	s, err := Parse([]byte(sample))
	require.NoError(t, err)
	ctx := context.Background()

	engine, err := s.Engine(ctx)
	require.NoError(t, err)
	assert.Equal(t, counters.EngineBDB, engine)

	on, err := s.FeatureEnabled(ctx, counters.FeatureNDNCache)
	require.NoError(t, err)
	assert.True(t, on)

	off, err := s.FeatureEnabled(ctx, "nsslapd-unknown")
	require.NoError(t, err)
	assert.False(t, off)

	backends, err := s.ListBackends(ctx)
	require.NoError(t, err)
	assert.Equal(t, []counters.Backend{
		{Name: "userroot", Suffix: "dc=example,dc=com"},
		{Name: "changelog", Suffix: "cn=changelog"},
	}, backends)

	global, err := s.GlobalCounters(ctx)
	require.NoError(t, err)
	v, _ := global.First("dbcachehitratio")
	assert.Equal(t, "95", v)

	link, err := s.ChainingCounters(ctx, "link1")
	require.NoError(t, err)
	assert.Equal(t, "cn=monitor,cn=link1,cn=chaining database,cn=plugins,cn=config", link.DN)
	assert.False(t, link.Has("dn"))

	disks, err := s.DiskPartitions(ctx)
	require.NoError(t, err)
	assert.Len(t, disks, 1)

	server, err := s.ServerCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cn=monitor", server.DN)
}

func TestParse_UnknownBackend(t *testing.T) {
	s, err := Parse([]byte(sample))
	require.NoError(t, err)

	_, err = s.BackendCounters(context.Background(), "missing")
	assert.True(t, errors.Is(err, counters.ErrNotFound))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("global: [1, 2]\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("backends:\n  - suffix: dc=x\n"))
	assert.ErrorContains(t, err, "name is required")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Backends, 2)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/revittco/dsmon/internal/counters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiskLine(t *testing.T) {
	d, err := ParseDiskLine(`partition="/" size="52576092160" used="25305038848" available="27271053312" use%="48"`)
	require.NoError(t, err)
	assert.Equal(t, DiskUsage{
		Mount:     "/",
		Size:      52576092160,
		Used:      25305038848,
		Available: 27271053312,
		Percent:   "48",
	}, d)
}

func TestParseDiskLine_SpacesInMount(t *testing.T) {
	d, err := ParseDiskLine(`partition="/mnt/my disk" size="100" used="1" available="99" use%="1"`)
	require.NoError(t, err)
	assert.Equal(t, "/mnt/my disk", d.Mount)
}

func TestParseDiskLine_Errors(t *testing.T) {
	for _, line := range []string{
		`partition="/" size="x" used="1" available="1" use%="1"`,
		`partition="/" size="1" used="1" use%="1"`,
		`size="1" used="1" available="1" use%="1"`,
		`partition="/ size="1"`,
		`garbage`,
	} {
		_, err := ParseDiskLine(line)
		assert.Error(t, err, line)
	}
}

func TestDisks(t *testing.T) {
	src := &fakeSource{disks: []string{
		`partition="/" size="100" used="40" available="60" use%="40"`,
		`partition="/var" size="200" used="20" available="180" use%="10"`,
	}}

	got, err := Disks(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "/var", got[1].Mount)
}

func TestServerStatus_JustResources(t *testing.T) {
	src := &fakeSource{server: setOf("cn=monitor",
		"version", "389-Directory/3.1.1",
		"threads", "17",
		"currentconnections", "3",
		"starttime", "20261019000000Z",
	)}

	all, err := ServerStatus(context.Background(), src, false)
	require.NoError(t, err)
	assert.Equal(t, 4, all.Len())

	res, err := ServerStatus(context.Background(), src, true)
	require.NoError(t, err)
	got := res.Counters()
	require.Len(t, got, 2)
	assert.Equal(t, "threads", got[0].Name)
	assert.Equal(t, "currentconnections", got[1].Name)
}

func TestBackendStatus(t *testing.T) {
	src := newFake(counters.EngineMDB)

	all, err := BackendStatus(context.Background(), src, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := BackendStatus(context.Background(), src, "USERROOT")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "cn=monitor,cn=userroot", one[0].DN)

	_, err = BackendStatus(context.Background(), src, "missing")
	assert.True(t, errors.Is(err, counters.ErrNotFound))
}

func TestChainingStatus(t *testing.T) {
	src := &fakeSource{
		links:   []counters.Backend{{Name: "link1", Suffix: "o=remote"}},
		perLink: map[string]*counters.Set{"link1": setOf("cn=monitor,cn=link1", "nsaddcount", "3")},
	}

	got, err := ChainingStatus(context.Background(), src, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	v, _ := got[0].First("nsaddcount")
	assert.Equal(t, "3", v)

	_, err = ChainingStatus(context.Background(), src, "link2")
	assert.ErrorIs(t, err, counters.ErrNotFound)
}

package ldapsource

import (
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetFromEntry_KeepsAttributeOrder(t *testing.T) {
	e := &ldap.Entry{
		DN: "cn=monitor,cn=userroot,cn=ldbm database,cn=plugins,cn=config",
		Attributes: []*ldap.EntryAttribute{
			{Name: "dbfilename-1", Values: []string{"userroot/id2entry.db"}},
			{Name: "dbfilecachehit-1", Values: []string{"12"}},
			{Name: "dbfilename-0", Values: []string{"userroot/cn.db"}},
			{Name: "entrycachehitratio", Values: []string{"99"}},
		},
	}

	set := setFromEntry(e)
	got := set.Counters()
	require.Len(t, got, 4)
	assert.Equal(t, "dbfilename-1", got[0].Name)
	assert.Equal(t, "dbfilename-0", got[2].Name)
	assert.Equal(t, e.DN, set.DN)
	v, ok := set.First("EntryCacheHitRatio")
	assert.True(t, ok)
	assert.Equal(t, "99", v)
}

func TestBackendsFromEntries(t *testing.T) {
	entries := []*ldap.Entry{
		{DN: "cn=userRoot," + ldbmBase, Attributes: []*ldap.EntryAttribute{
			{Name: "cn", Values: []string{"userRoot"}},
			{Name: "nsslapd-suffix", Values: []string{"dc=example,dc=com"}},
		}},
		{DN: "cn=changelog," + ldbmBase, Attributes: []*ldap.EntryAttribute{
			{Name: "CN", Values: []string{"changelog"}},
			{Name: "nsslapd-Suffix", Values: []string{"cn=changelog"}},
		}},
	}

	got := backendsFromEntries(entries)
	require.Len(t, got, 2)
	assert.Equal(t, "userRoot", got[0].Name)
	assert.Equal(t, "dc=example,dc=com", got[0].Suffix)
	assert.Equal(t, "changelog", got[1].Name)
	assert.Equal(t, "cn=changelog", got[1].Suffix)
}

func TestInstanceMonitorDN(t *testing.T) {
	assert.Equal(t,
		"cn=monitor,cn=userRoot,cn=ldbm database,cn=plugins,cn=config",
		instanceMonitorDN("userRoot", ldbmBase))
	assert.Equal(t,
		"cn=monitor,cn=a\\,b,cn=chaining database,cn=plugins,cn=config",
		instanceMonitorDN("a,b", chainingBase))
}

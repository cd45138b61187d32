package counters

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_PreservesDeliveryOrder(t *testing.T) {
	s := NewSet("cn=monitor")
	s.Add("zeta", "1")
	s.Add("alpha", "2")
	s.Add("Mid", "3")
	s.Add("ZETA", "4")

	got := s.Counters()
	require.Len(t, got, 3)
	assert.Equal(t, "zeta", got[0].Name)
	assert.Equal(t, []string{"1", "4"}, got[0].Values)
	assert.Equal(t, "alpha", got[1].Name)
	assert.Equal(t, "Mid", got[2].Name)
}

func TestSet_CaseInsensitiveLookup(t *testing.T) {
	s := NewSet("")
	s.Add("EntryCacheHitRatio", "97")

	v, ok := s.First("entrycachehitratio")
	assert.True(t, ok)
	assert.Equal(t, "97", v)
	assert.True(t, s.Has("ENTRYCACHEHITRATIO"))
}

func TestSet_MissingCounter(t *testing.T) {
	s := NewSet("cn=monitor,cn=userroot")

	_, err := s.String("currententrycachesize")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))

	var mce *MissingCounterError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, "currententrycachesize", mce.Name)
	assert.Contains(t, err.Error(), "cn=monitor,cn=userroot")
}

func TestSet_Int(t *testing.T) {
	s := NewSet("")
	s.Add("size", " 4096 ")
	s.Add("bad", "12k")

	n, err := s.Int("size")
	require.NoError(t, err)
	assert.EqualValues(t, 4096, n)

	_, err = s.Int("bad")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestSet_Filter(t *testing.T) {
	s := NewSet("cn=monitor")
	s.Add("threads", "24")
	s.Add("version", "389-Directory/3.0.0")
	s.Add("currentconnections", "5")

	f := s.Filter("currentconnections", "threads", "absent")
	got := f.Counters()
	require.Len(t, got, 2)
	assert.Equal(t, "threads", got[0].Name)
	assert.Equal(t, "currentconnections", got[1].Name)
	assert.Equal(t, "cn=monitor", f.DN)
}

func TestParseEngine(t *testing.T) {
	assert.Equal(t, EngineMDB, ParseEngine("MDB"))
	assert.Equal(t, EngineBDB, ParseEngine("bdb"))
	assert.Equal(t, EngineBDB, ParseEngine(""))
}

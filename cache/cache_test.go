package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_Stable(t *testing.T) {
	a, err := Fingerprint("2024-03-01", []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	b, err := Fingerprint("2024-03-01", []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	c, err := Fingerprint("2024-03-01", []string{"MSFT", "AAPL"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c, "order is part of the structure")
}

func TestFingerprint_MapKeysSorted(t *testing.T) {
	a, err := Fingerprint(map[string]int{"x": 1, "y": 2, "z": 3})
	require.NoError(t, err)
	for range 10 {
		b, err := Fingerprint(map[string]int{"z": 3, "y": 2, "x": 1})
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestTTL_Expires(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c := New[int](time.Minute).WithClock(func() time.Time { return now })

	c.Put("k", 42)
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	now = now.Add(59 * time.Second)
	_, ok = c.Get("k")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry must expire after the ttl")

	c.Evict()
	assert.Equal(t, 0, c.Len())
}

func TestTTL_ZeroDisables(t *testing.T) {
	c := New[string](0)
	c.Put("k", "v")
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestTTL_NilIsNoop(t *testing.T) {
	var c *TTL[string]
	c.Put("k", "v")
	_, ok := c.Get("k")
	assert.False(t, ok)
	c.Purge()
	assert.Equal(t, 0, c.Len())
}

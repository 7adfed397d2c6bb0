package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStationPoolExhaustion(t *testing.T) {
	pool := NewStationPool(6)
	for want := 1; want <= 6; want++ {
		got, err := pool.Acquire()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := pool.Acquire()
	assert.ErrorIs(t, err, ErrNoStationAvailable)
}

func TestStationPoolReleaseFreesLowest(t *testing.T) {
	pool := NewStationPool(3)
	for i := 0; i < 3; i++ {
		_, err := pool.Acquire()
		require.NoError(t, err)
	}
	pool.Release(2)

	got, err := pool.Acquire()
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	_, err = pool.Acquire()
	assert.ErrorIs(t, err, ErrNoStationAvailable)

	// Out-of-range and double releases are harmless.
	pool.Release(0)
	pool.Release(99)
	pool.Release(1)
	pool.Release(1)
	got, err = pool.Acquire()
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestStationPoolReset(t *testing.T) {
	pool := NewStationPool(2)
	_, _ = pool.Acquire()
	_, _ = pool.Acquire()
	pool.Reset()

	got, err := pool.Acquire()
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

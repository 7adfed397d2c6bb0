package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTournamentLocksAreExclusivePerTournament(t *testing.T) {
	locks := NewTournamentLocks()

	unlock, ok := locks.tryLock(1)
	require.True(t, ok)

	_, ok = locks.tryLock(1)
	assert.False(t, ok, "second lock on the same tournament should fail")

	otherUnlock, ok := locks.tryLock(2)
	assert.True(t, ok, "lock on a different tournament should succeed")
	otherUnlock()

	unlock()
	unlock2, ok := locks.tryLock(1)
	assert.True(t, ok, "lock should be available again after unlock")
	unlock2()
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCashConservesEveryDollar(t *testing.T) {
	cases := []struct {
		delta, players int
		want           []int
	}{
		{delta: 40, players: 2, want: []int{20, 20}},
		{delta: 35, players: 2, want: []int{18, 17}},
		{delta: 35, players: 1, want: []int{35}},
		{delta: 0, players: 2, want: []int{0, 0}},
		// Backing out a previous credit reclaims the odd dollar from the
		// same player it went to.
		{delta: -35, players: 2, want: []int{-18, -17}},
	}
	for _, c := range cases {
		got := splitCash(c.delta, c.players)
		assert.Equal(t, c.want, got, "delta %d over %d players", c.delta, c.players)
		sum := 0
		for _, s := range got {
			sum += s
		}
		assert.Equal(t, c.delta, sum, "shares must sum to the delta")
	}
}

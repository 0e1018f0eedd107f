package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLeaderboard(t *testing.T) {
	tests := []struct {
		name    string
		ratings map[GeneratorID]float64
		want    []LeaderboardEntry
	}{
		{
			name: "distinct ratings sort descending",
			ratings: map[GeneratorID]float64{
				"alpha": 980.5,
				"beta":  1032.0,
				"gamma": 1001.25,
			},
			want: []LeaderboardEntry{
				{Rank: 1, Model: "beta", Rating: 1032.0},
				{Rank: 2, Model: "gamma", Rating: 1001.25},
				{Rank: 3, Model: "alpha", Rating: 980.5},
			},
		},
		{
			name: "equal ratings break ties by id ascending",
			ratings: map[GeneratorID]float64{
				"zeta":  1000.0,
				"alpha": 1000.0,
				"mid":   1000.0,
			},
			want: []LeaderboardEntry{
				{Rank: 1, Model: "alpha", Rating: 1000.0},
				{Rank: 2, Model: "mid", Rating: 1000.0},
				{Rank: 3, Model: "zeta", Rating: 1000.0},
			},
		},
		{
			name:    "empty ratings",
			ratings: map[GeneratorID]float64{},
			want:    []LeaderboardEntry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildLeaderboard(tt.ratings)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildLeaderboardRanksAreTotal(t *testing.T) {
	ratings := map[GeneratorID]float64{
		"a": 1016, "b": 1016, "c": 984, "d": 1000, "e": 1000,
	}
	entries := BuildLeaderboard(ratings)
	require.Len(t, entries, len(ratings))

	seen := make(map[int]bool, len(entries))
	for i, entry := range entries {
		assert.Equal(t, i+1, entry.Rank, "ranks must be 1..N with no gaps")
		assert.False(t, seen[entry.Rank], "rank %d assigned twice", entry.Rank)
		seen[entry.Rank] = true
	}
}

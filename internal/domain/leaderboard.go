package domain

import "sort"

// LeaderboardEntry is one row of the final ranking.
type LeaderboardEntry struct {
	// Rank is the 1-based position, assigned without gaps or duplicates.
	Rank int `json:"rank"`

	// Model is the generator this entry ranks.
	Model GeneratorID `json:"model"`

	// Rating is the generator's final ELO rating.
	Rating float64 `json:"rating"`
}

// BuildLeaderboard derives the final ranking from a ratings snapshot.
// Generators are ordered by rating descending; equal ratings are broken by
// GeneratorID ascending so the ordering is total and reproducible. Each
// entry receives a distinct rank 1..N even on ties.
func BuildLeaderboard(ratings map[GeneratorID]float64) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(ratings))
	for id, rating := range ratings {
		entries = append(entries, LeaderboardEntry{Model: id, Rating: rating})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rating != entries[j].Rating {
			return entries[i].Rating > entries[j].Rating
		}
		return entries[i].Model < entries[j].Model
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

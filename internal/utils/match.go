package utils

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/amaumene/repertoire/internal/models"
)

// RankByName orders entries by how closely their name matches query:
// 1. Exact match (case-insensitive)
// 2. Name contains the query
// 3. Edit distance between name and query (smaller first)
// Ties keep the API order.
func RankByName(entries []models.Entry, query string) []models.Entry {
	sorted := make([]models.Entry, len(entries))
	copy(sorted, entries)

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return nameScore(sorted[i].Name, q) < nameScore(sorted[j].Name, q)
	})

	return sorted
}

// nameScore is lower for better matches
func nameScore(name, q string) int {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case n == q:
		return 0
	case strings.Contains(n, q):
		// prefer names that add little around the query
		return 1 + len(n) - len(q)
	}
	// offset past any contains score
	return 1<<16 + levenshtein.ComputeDistance(n, q)
}

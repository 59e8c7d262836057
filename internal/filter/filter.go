// Package filter narrows the anime collection for the list view.
package filter

import (
	"sort"
	"strings"

	"animemanager/pkg/models"
)

// Filter keeps the records whose title or synopsis contains query (case-insensitive)
// and whose genres include category. Empty query or category matches everything.
// Input order is preserved.
func Filter(list []models.Anime, query, category string) []models.Anime {
	q := strings.ToLower(query)
	out := make([]models.Anime, 0, len(list))
	for _, a := range list {
		if q != "" &&
			!strings.Contains(strings.ToLower(a.Title), q) &&
			!strings.Contains(strings.ToLower(a.Synopsis), q) {
			continue
		}
		if category != "" && !a.HasGenre(category) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Categories returns every distinct genre in list, sorted ascending.
func Categories(list []models.Anime) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, a := range list {
		for _, g := range a.Genres {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			out = append(out, g)
		}
	}
	sort.Strings(out)
	return out
}

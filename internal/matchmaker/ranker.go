// Package matchmaker ranks eligible discovery candidates for a viewer.
// It is pure: exclusion filtering and candidate sourcing happen in the
// repository before this runs.
package matchmaker

import (
	"sort"

	"github.com/grubk/cypress-clientside/internal/domain"
)

// PageSize bounds every discovery queue.
const PageSize = 20

// Rank computes common interests against the viewer, sorts candidates by
// descending overlap and truncates to PageSize.
//
// Ties keep their relative source order (stable sort); a viewer with no
// interests gets the pool back in source order. The returned candidates
// carry their CommonInterests for display.
func Rank(viewerInterests []domain.Interest, pool []domain.Profile) []domain.MatchCandidate {
	candidates := make([]domain.MatchCandidate, 0, len(pool))
	for _, p := range pool {
		candidates = append(candidates, domain.MatchCandidate{
			Profile:         p,
			CommonInterests: CommonInterests(viewerInterests, p.Interests),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i].CommonInterests) > len(candidates[j].CommonInterests)
	})

	if len(candidates) > PageSize {
		candidates = candidates[:PageSize]
	}
	return candidates
}

// CommonInterests returns the subset of the viewer's interests the
// candidate shares, in the viewer's order.
func CommonInterests(viewer, candidate []domain.Interest) []domain.Interest {
	if len(viewer) == 0 || len(candidate) == 0 {
		return nil
	}

	set := make(map[domain.Interest]struct{}, len(candidate))
	for _, in := range candidate {
		set[in] = struct{}{}
	}

	var common []domain.Interest
	for _, in := range viewer {
		if _, ok := set[in]; ok {
			common = append(common, in)
		}
	}
	return common
}

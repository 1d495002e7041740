package problems

import "github.com/google/uuid"

// poolOverfetch multiplies the requested limit on each pool query so that
// client-side exclusion filtering still leaves enough candidates.
const poolOverfetch = 3

// fallbackStages returns the classification paths to try in priority
// order: the exact requested path first, then progressively shallower
// prefixes down to depth 2 (or depth 1 when nothing deeper was requested).
// A path without depth1 yields a single unconstrained stage, matching the
// newest items of the type regardless of classification.
func fallbackStages(c Classification) []Classification {
	depth := c.Depth()
	if depth == 0 {
		return []Classification{{}}
	}

	floor := min(2, depth)
	stages := make([]Classification, 0, depth-floor+1)
	for d := depth; d >= floor; d-- {
		stages = append(stages, c.Truncate(d))
	}
	return stages
}

// mergeUnique appends candidates to matched, skipping IDs already seen,
// until limit is reached. Returns the extended slice.
func mergeUnique(matched []Problem, candidates []Problem, seen map[uuid.UUID]struct{}, limit int) []Problem {
	for _, p := range candidates {
		if len(matched) >= limit {
			break
		}
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		matched = append(matched, p)
	}
	return matched
}

// filterUsable drops excluded IDs and error marker rows from candidates.
func filterUsable(candidates []Problem, excluded map[uuid.UUID]struct{}) []Problem {
	usable := make([]Problem, 0, len(candidates))
	for _, p := range candidates {
		if p.IsErrorMarker() {
			continue
		}
		if _, ok := excluded[p.ID]; ok {
			continue
		}
		usable = append(usable, p)
	}
	return usable
}

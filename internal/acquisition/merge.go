package acquisition

import (
	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/problems"
)

// Provenance distinguishes pool hits from problems generated by the
// current request. Attached at read time, never persisted.
const (
	ProvenanceExisting = "existing"
	ProvenanceNew      = "new"
)

// Item is a problem tagged with its provenance for this acquisition.
type Item struct {
	problems.Problem
	Provenance string `json:"provenance"`
}

// TypeCounts summarizes one problem type's contribution to the result.
type TypeCounts struct {
	Requested int `json:"requested"`
	Existing  int `json:"existing"`
	Generated int `json:"generated"`
}

// Summary reports overall and per-type counts for an acquisition result.
type Summary struct {
	ExistingCount       int                          `json:"existingCount"`
	NewlyGeneratedCount int                          `json:"newlyGeneratedCount"`
	ByType              map[problems.Type]TypeCounts `json:"byType"`
}

// Merge combines pool hits and newly generated problems into a single
// tagged list with summary counts. Pure function: existing items come
// first in pool order, then generated items in arrival order, grouped by
// canonical type order. Duplicate IDs keep their first occurrence.
func Merge(
	requested map[problems.Type]int,
	existing map[problems.Type][]problems.Problem,
	generated map[problems.Type][]problems.Problem,
) ([]Item, Summary) {
	items := make([]Item, 0)
	seen := make(map[uuid.UUID]struct{})
	summary := Summary{ByType: make(map[problems.Type]TypeCounts)}

	for _, typ := range problems.CanonicalTypes {
		if requested[typ] == 0 && len(existing[typ]) == 0 && len(generated[typ]) == 0 {
			continue
		}

		counts := TypeCounts{Requested: requested[typ]}

		for _, p := range existing[typ] {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			items = append(items, Item{Problem: p, Provenance: ProvenanceExisting})
			counts.Existing++
		}

		for _, p := range generated[typ] {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			items = append(items, Item{Problem: p, Provenance: ProvenanceNew})
			counts.Generated++
		}

		summary.ByType[typ] = counts
		summary.ExistingCount += counts.Existing
		summary.NewlyGeneratedCount += counts.Generated
	}

	return items, summary
}

package acquisition

import (
	"fmt"

	"github.com/quizdeck/quizdeck/internal/problems"
)

// RequestSpec describes one acquisition action: how many problems of each
// type the caller wants for a classification path, plus pool exclusion
// options.
type RequestSpec struct {
	Classification    problems.Classification `json:"classification"`
	Counts            map[problems.Type]int   `json:"counts"`
	Language          string                  `json:"language"`
	ExcludeSolved     bool                    `json:"excludeSolved"`
	ExcludeRecentDays int                     `json:"excludeRecentDays"`
}

// Validate checks counts, types, and classification shape. At least one
// type must request one or more problems.
func (s RequestSpec) Validate(maxPerType int) error {
	if !s.Classification.Contiguous() {
		return problems.ErrInvalidClassification
	}

	actionable := false
	for typ, count := range s.Counts {
		if !typ.Valid() {
			return fmt.Errorf("%w: %s", problems.ErrInvalidType, typ)
		}
		if count < 0 || count > maxPerType {
			return fmt.Errorf("%w: %s count %d outside 0..%d", ErrCountOutOfRange, typ, count, maxPerType)
		}
		if count > 0 {
			actionable = true
		}
	}

	if !actionable {
		return ErrNotActionable
	}

	return nil
}

// RequestedTypes returns the types with a positive count in canonical
// order.
func (s RequestSpec) RequestedTypes() []problems.Type {
	types := make([]problems.Type, 0, len(s.Counts))
	for _, typ := range problems.CanonicalTypes {
		if s.Counts[typ] > 0 {
			types = append(types, typ)
		}
	}
	return types
}

// Shortfall computes how many problems must be generated after the pool
// contributed found items.
func Shortfall(requested, found int) int {
	return max(0, requested-found)
}

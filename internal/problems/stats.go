package problems

import (
	"github.com/quizdeck/quizdeck/pkg/repository"
)

// StatsRow aggregates one type and classification path: how many of the
// user's problems were answered correctly, incorrectly, and how many exist
// overall (answered or not). Error markers are excluded.
type StatsRow struct {
	Type      Type    `json:"problemType"`
	Depth1    *string `json:"depth1,omitempty"`
	Depth2    *string `json:"depth2,omitempty"`
	Depth3    *string `json:"depth3,omitempty"`
	Depth4    *string `json:"depth4,omitempty"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Total     int     `json:"total"`
}

func scanStatsRow(s repository.Scanner) (StatsRow, error) {
	var row StatsRow
	err := s.Scan(
		&row.Type,
		&row.Depth1,
		&row.Depth2,
		&row.Depth3,
		&row.Depth4,
		&row.Correct,
		&row.Incorrect,
		&row.Total,
	)
	return row, err
}

// RollUp merges stats rows up to the given classification depth, summing
// counts for rows that share a type and truncated path. Depth 0 collapses
// to per-type totals. Input order determines output order by first
// occurrence.
func RollUp(rows []StatsRow, depth int) []StatsRow {
	type key struct {
		typ            Type
		d1, d2, d3, d4 string
	}

	index := make(map[key]int)
	merged := make([]StatsRow, 0, len(rows))

	for _, row := range rows {
		truncated := row
		if depth < 4 {
			truncated.Depth4 = nil
		}
		if depth < 3 {
			truncated.Depth3 = nil
		}
		if depth < 2 {
			truncated.Depth2 = nil
		}
		if depth < 1 {
			truncated.Depth1 = nil
		}

		k := key{
			typ: truncated.Type,
			d1:  deref(truncated.Depth1),
			d2:  deref(truncated.Depth2),
			d3:  deref(truncated.Depth3),
			d4:  deref(truncated.Depth4),
		}

		if i, ok := index[k]; ok {
			merged[i].Correct += row.Correct
			merged[i].Incorrect += row.Incorrect
			merged[i].Total += row.Total
			continue
		}

		index[k] = len(merged)
		merged = append(merged, truncated)
	}

	return merged
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package acquisition

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/problems"
)

func poolProblem(typ problems.Type) problems.Problem {
	return problems.Problem{ID: uuid.New(), Type: typ, Stem: "stem"}
}

func TestMergeExistingBeforeGenerated(t *testing.T) {
	existing := []problems.Problem{
		poolProblem(problems.TypeMultipleChoice),
		poolProblem(problems.TypeMultipleChoice),
		poolProblem(problems.TypeMultipleChoice),
	}
	generated := []problems.Problem{
		poolProblem(problems.TypeMultipleChoice),
		poolProblem(problems.TypeMultipleChoice),
	}

	items, summary := Merge(
		map[problems.Type]int{problems.TypeMultipleChoice: 5},
		map[problems.Type][]problems.Problem{problems.TypeMultipleChoice: existing},
		map[problems.Type][]problems.Problem{problems.TypeMultipleChoice: generated},
	)

	if len(items) != 5 {
		t.Fatalf("len(items) = %d, want 5", len(items))
	}

	for i, p := range existing {
		if items[i].ID != p.ID {
			t.Fatalf("items[%d].ID = %s, want existing %s", i, items[i].ID, p.ID)
		}
		if items[i].Provenance != ProvenanceExisting {
			t.Fatalf("items[%d].Provenance = %q, want %q", i, items[i].Provenance, ProvenanceExisting)
		}
	}
	for i, p := range generated {
		got := items[len(existing)+i]
		if got.ID != p.ID {
			t.Fatalf("generated item %d = %s, want %s", i, got.ID, p.ID)
		}
		if got.Provenance != ProvenanceNew {
			t.Fatalf("generated item %d provenance = %q, want %q", i, got.Provenance, ProvenanceNew)
		}
	}

	want := Summary{
		ExistingCount:       3,
		NewlyGeneratedCount: 2,
		ByType: map[problems.Type]TypeCounts{
			problems.TypeMultipleChoice: {Requested: 5, Existing: 3, Generated: 2},
		},
	}
	if !reflect.DeepEqual(summary, want) {
		t.Fatalf("summary = %+v, want %+v", summary, want)
	}
}

func TestMergeCanonicalTypeOrder(t *testing.T) {
	existing := map[problems.Type][]problems.Problem{
		problems.TypeTrueFalse:      {poolProblem(problems.TypeTrueFalse)},
		problems.TypeMultipleChoice: {poolProblem(problems.TypeMultipleChoice)},
	}
	generated := map[problems.Type][]problems.Problem{
		problems.TypeEssay: {poolProblem(problems.TypeEssay)},
	}

	items, _ := Merge(
		map[problems.Type]int{
			problems.TypeMultipleChoice: 1,
			problems.TypeEssay:          1,
			problems.TypeTrueFalse:      1,
		},
		existing,
		generated,
	)

	gotOrder := make([]problems.Type, len(items))
	for i, item := range items {
		gotOrder[i] = item.Type
	}

	wantOrder := []problems.Type{
		problems.TypeMultipleChoice,
		problems.TypeEssay,
		problems.TypeTrueFalse,
	}
	if !reflect.DeepEqual(gotOrder, wantOrder) {
		t.Fatalf("type order = %v, want %v", gotOrder, wantOrder)
	}
}

func TestMergeDeduplicatesByID(t *testing.T) {
	shared := poolProblem(problems.TypeShortAnswer)

	items, summary := Merge(
		map[problems.Type]int{problems.TypeShortAnswer: 2},
		map[problems.Type][]problems.Problem{problems.TypeShortAnswer: {shared}},
		map[problems.Type][]problems.Problem{problems.TypeShortAnswer: {shared, poolProblem(problems.TypeShortAnswer)}},
	)

	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Provenance != ProvenanceExisting {
		t.Fatalf("first occurrence provenance = %q, want %q", items[0].Provenance, ProvenanceExisting)
	}
	if summary.NewlyGeneratedCount != 1 {
		t.Fatalf("NewlyGeneratedCount = %d, want 1", summary.NewlyGeneratedCount)
	}
}

func TestMergeIsPure(t *testing.T) {
	requested := map[problems.Type]int{problems.TypeEssay: 2}
	existing := map[problems.Type][]problems.Problem{
		problems.TypeEssay: {poolProblem(problems.TypeEssay)},
	}
	generated := map[problems.Type][]problems.Problem{
		problems.TypeEssay: {poolProblem(problems.TypeEssay)},
	}

	first, firstSummary := Merge(requested, existing, generated)
	second, secondSummary := Merge(requested, existing, generated)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated merge produced different items")
	}
	if !reflect.DeepEqual(firstSummary, secondSummary) {
		t.Fatal("repeated merge produced different summaries")
	}
}

func TestMergeSkipsInactiveTypes(t *testing.T) {
	_, summary := Merge(
		map[problems.Type]int{problems.TypeMultipleChoice: 1},
		map[problems.Type][]problems.Problem{
			problems.TypeMultipleChoice: {poolProblem(problems.TypeMultipleChoice)},
		},
		nil,
	)

	if _, ok := summary.ByType[problems.TypeEssay]; ok {
		t.Fatal("summary includes a type with no request and no items")
	}
	if len(summary.ByType) != 1 {
		t.Fatalf("len(ByType) = %d, want 1", len(summary.ByType))
	}
}

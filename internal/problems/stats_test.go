package problems

import (
	"reflect"
	"testing"
)

func depth(s string) *string { return &s }

func statsFixture() []StatsRow {
	return []StatsRow{
		{Type: TypeMultipleChoice, Depth1: depth("grammar"), Depth2: depth("tense"), Correct: 2, Incorrect: 1, Total: 4},
		{Type: TypeMultipleChoice, Depth1: depth("grammar"), Depth2: depth("modals"), Correct: 1, Incorrect: 0, Total: 2},
		{Type: TypeEssay, Depth1: depth("writing"), Correct: 0, Incorrect: 1, Total: 1},
	}
}

func TestRollUpToDepthOne(t *testing.T) {
	got := RollUp(statsFixture(), 1)

	want := []StatsRow{
		{Type: TypeMultipleChoice, Depth1: depth("grammar"), Correct: 3, Incorrect: 1, Total: 6},
		{Type: TypeEssay, Depth1: depth("writing"), Correct: 0, Incorrect: 1, Total: 1},
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("RollUp(depth 1) = %+v, want %+v", got, want)
	}
}

func TestRollUpToTypeTotals(t *testing.T) {
	got := RollUp(statsFixture(), 0)

	want := []StatsRow{
		{Type: TypeMultipleChoice, Correct: 3, Incorrect: 1, Total: 6},
		{Type: TypeEssay, Correct: 0, Incorrect: 1, Total: 1},
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("RollUp(depth 0) = %+v, want %+v", got, want)
	}
}

func TestRollUpFullDepthUnchanged(t *testing.T) {
	rows := statsFixture()
	got := RollUp(rows, 4)

	if !reflect.DeepEqual(got, rows) {
		t.Fatalf("RollUp(depth 4) = %+v, want input unchanged", got)
	}
}

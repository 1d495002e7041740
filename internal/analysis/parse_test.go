package analysis

import (
	"testing"

	"github.com/google/uuid"
)

func TestParseAnalysis(t *testing.T) {
	payload := `[
		{"content": "Choose the word that best completes the sentence.",
		 "classification": {"depth1": "vocabulary", "depth2": "collocation"}},
		{"content": "Read the passage and answer the question.",
		 "classification": {"depth1": "reading"}}
	]`

	sessionID := uuid.New()
	extracted, err := parseAnalysis(payload, sessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(extracted) != 2 {
		t.Fatalf("expected 2 problems, got %d", len(extracted))
	}
	if extracted[0].Seq != 1 || extracted[1].Seq != 2 {
		t.Error("seq should number problems in order")
	}
	if extracted[0].SessionID != sessionID {
		t.Error("session id not assigned")
	}
	if extracted[0].Classification.Depth2 != "collocation" {
		t.Error("classification not carried over")
	}
}

func TestParseAnalysisSkipsEmptyContent(t *testing.T) {
	payload := `[
		{"content": "  ", "classification": {"depth1": "grammar"}},
		{"content": "Identify the error in the sentence.",
		 "classification": {"depth1": "grammar"}}
	]`

	extracted, err := parseAnalysis(payload, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(extracted) != 1 {
		t.Fatalf("expected 1 problem, got %d", len(extracted))
	}
	if extracted[0].Seq != 1 {
		t.Error("seq should renumber after skipping")
	}
}

func TestParseAnalysisEmptyArray(t *testing.T) {
	extracted, err := parseAnalysis("[]", uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(extracted) != 0 {
		t.Errorf("expected no problems, got %d", len(extracted))
	}
}

func TestParseAnalysisRejectsGappedClassification(t *testing.T) {
	payload := `[
		{"content": "Some problem.",
		 "classification": {"depth1": "grammar", "depth3": "perfect aspect"}}
	]`

	if _, err := parseAnalysis(payload, uuid.New()); err == nil {
		t.Error("expected error for gapped classification")
	}
}

func TestParseAnalysisRejectsNonJSON(t *testing.T) {
	if _, err := parseAnalysis("the image shows a test", uuid.New()); err == nil {
		t.Error("expected decode error")
	}
}

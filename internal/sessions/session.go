// Package sessions implements the upload session domain: image uploads,
// analysis lifecycle status, extracted problems, and the review board.
package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/problems"
)

// Status tracks a session through the analysis lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusLabeled    Status = "labeled"
	StatusFailed     Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusLabeled, StatusFailed:
		return true
	}
	return false
}

// Active reports whether analysis is still underway.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusProcessing
}

// Session is an uploaded test image moving through analysis.
type Session struct {
	ID             uuid.UUID `json:"id"`
	UserID         string    `json:"userId"`
	ImageKey       string    `json:"imageKey"`
	ContentType    string    `json:"contentType"`
	PageCount      *int      `json:"pageCount,omitempty"`
	Status         Status    `json:"status"`
	FailureStage   *string   `json:"failureStage,omitempty"`
	FailureMessage *string   `json:"failureMessage,omitempty"`
	AnalysisModel  *string   `json:"analysisModel,omitempty"`
	ProblemCount   int       `json:"problemCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ExtractedProblem is a problem identified in the uploaded image during
// analysis, pending user review.
type ExtractedProblem struct {
	ID             uuid.UUID               `json:"id"`
	SessionID      uuid.UUID               `json:"sessionId"`
	Seq            int                     `json:"seq"`
	Content        string                  `json:"content"`
	Classification problems.Classification `json:"classification"`
	CreatedAt      time.Time               `json:"createdAt"`
}

// CreateCommand carries the data needed to register an uploaded image.
type CreateCommand struct {
	UserID      string
	Data        []byte
	Filename    string
	ContentType string
	PageCount   *int
}

// Analyzer accepts sessions for background image analysis. Implemented by
// the analysis worker; declared here so the handler can enqueue without a
// dependency on the worker package.
type Analyzer interface {
	Submit(ctx context.Context, sessionID uuid.UUID) error
}

package sessions

import "time"

// Bucket is a review board column derived from session status and the
// number of extracted problems.
type Bucket string

const (
	BucketAnalyzing     Bucket = "analyzing"
	BucketPendingReview Bucket = "pending_review"
	BucketDone          Bucket = "done"
	BucketFailed        Bucket = "failed"
)

// PollGrace is how long the board keeps polling after the last session
// leaves an active status, absorbing status transitions that land just
// after a poll.
const PollGrace = 60 * time.Second

// ClassifyBucket maps a session status and extracted problem count to its
// board bucket. Completed sessions with nothing extracted go straight to
// done; sessions still analyzing that already have problems show up for
// review early.
func ClassifyBucket(status Status, problemCount int) Bucket {
	switch status {
	case StatusLabeled:
		return BucketDone
	case StatusFailed:
		return BucketFailed
	case StatusCompleted:
		if problemCount > 0 {
			return BucketPendingReview
		}
		return BucketDone
	default:
		if problemCount == 0 {
			return BucketAnalyzing
		}
		return BucketPendingReview
	}
}

// Board partitions a user's sessions into review board columns.
type Board struct {
	Analyzing     []Session `json:"analyzing"`
	PendingReview []Session `json:"pendingReview"`
	Done          []Session `json:"done"`
	Failed        []Session `json:"failed"`
	KeepPolling   bool      `json:"keepPolling"`
}

// Partition builds the review board from the given sessions, computing the
// keep-polling flag against now.
func Partition(sessions []Session, now time.Time) Board {
	board := Board{
		Analyzing:     []Session{},
		PendingReview: []Session{},
		Done:          []Session{},
		Failed:        []Session{},
		KeepPolling:   KeepPolling(sessions, now),
	}

	for _, s := range sessions {
		switch ClassifyBucket(s.Status, s.ProblemCount) {
		case BucketAnalyzing:
			board.Analyzing = append(board.Analyzing, s)
		case BucketPendingReview:
			board.PendingReview = append(board.PendingReview, s)
		case BucketDone:
			board.Done = append(board.Done, s)
		case BucketFailed:
			board.Failed = append(board.Failed, s)
		}
	}

	return board
}

// KeepPolling reports whether the board should continue refreshing: any
// session is still active, or one changed state within the grace window.
// The grace window applies to every recent transition, failed sessions
// included, so the board also refreshes briefly after a failure lands.
func KeepPolling(sessions []Session, now time.Time) bool {
	for _, s := range sessions {
		if s.Status.Active() {
			return true
		}
		if now.Sub(s.UpdatedAt) <= PollGrace {
			return true
		}
	}
	return false
}

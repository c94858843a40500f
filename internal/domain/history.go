package domain

import "time"

// HistoryRecord is one completed generation persisted for later inspection
// via `b history`.
type HistoryRecord struct {
	ID        int64
	SessionID string
	Timestamp time.Time
	Provider  string
	Model     string
	Prompt    string
	Command   string
	Safety    SafetyLabel
	Accepted  bool
	Attempt   int
}

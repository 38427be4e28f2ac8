package model

import "time"

// CancellationEventType is the fixed event-type code that identifies an
// NFe cancellation event.
const CancellationEventType = "110111"

// CancellationEvent references an invoice by access key and voids it.
// Several events may exist for the same key; the one with the latest
// timestamp determines final status.
type CancellationEvent struct {
	AccessKey     string    `json:"access_key"`
	EventType     string    `json:"event_type"`
	OccurredAt    time.Time `json:"occurred_at,omitempty"`
	Justification string    `json:"justification,omitempty"`
	Protocol      string    `json:"protocol,omitempty"`
	Sequence      int       `json:"sequence,omitempty"`
	SourceFile    string    `json:"source_file,omitempty"`
}

// Supersedes reports whether e should replace prev as the effective
// cancellation for its key. A later timestamp wins; when either
// timestamp is absent or both are equal, the first event seen wins.
func (e *CancellationEvent) Supersedes(prev *CancellationEvent) bool {
	if prev == nil {
		return true
	}
	if e.OccurredAt.IsZero() || prev.OccurredAt.IsZero() {
		return false
	}
	return e.OccurredAt.After(prev.OccurredAt)
}

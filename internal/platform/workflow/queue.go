package workflow

import (
	"sort"
	"time"
)

// Priority score bounds, ESI-style: 1 is most urgent, 5 least.
const (
	MinPriority = 1
	MaxPriority = 5
)

// QueueEntry is a unit of clinical work that participates in a priority
// queue. Both fields are immutable after creation, which is why a stable
// sort on read is sufficient and no re-heapify is ever needed.
type QueueEntry interface {
	PriorityScore() int
	ArrivedAt() time.Time
}

// ValidatePriority rejects scores outside 1-5. Scores are never clamped.
func ValidatePriority(score int) error {
	if score < MinPriority || score > MaxPriority {
		return ErrInvalidPriority
	}
	return nil
}

// SortQueue orders entries by priority score ascending, then arrival time
// ascending (FIFO within a priority band). The sort is stable, so two calls
// over the same entries produce the same relative order regardless of the
// order the store returned them in.
func SortQueue[T QueueEntry](entries []T) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].PriorityScore() != entries[j].PriorityScore() {
			return entries[i].PriorityScore() < entries[j].PriorityScore()
		}
		return entries[i].ArrivedAt().Before(entries[j].ArrivedAt())
	})
}

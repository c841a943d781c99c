package queue

import (
	"sync"
	"time"

	"github.com/lexicc/lexicc/internal/tts"
)

// Pending is a FIFO of work items. The control loop is its only writer;
// the lock lets stats be read from elsewhere.
type Pending struct {
	items []tts.WorkItem

	mu    sync.RWMutex
	stats Stats
}

// Stats tracks queue activity.
type Stats struct {
	TotalEnqueued int64
	TotalDequeued int64
	CurrentSize   int
	PeakSize      int
	LastEnqueue   time.Time
	LastDequeue   time.Time
}

// NewPending creates an empty queue.
func NewPending() *Pending {
	return &Pending{}
}

// Push appends items after everything already queued, keeping their order.
func (q *Pending) Push(items ...tts.WorkItem) {
	if len(items) == 0 {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, items...)
	q.stats.TotalEnqueued += int64(len(items))
	q.stats.LastEnqueue = time.Now()
	q.stats.CurrentSize = len(q.items)
	if q.stats.CurrentSize > q.stats.PeakSize {
		q.stats.PeakSize = q.stats.CurrentSize
	}
}

// Pop removes and returns the oldest item.
// Returns tts.ErrQueueEmpty if nothing is queued.
func (q *Pending) Pop() (tts.WorkItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return tts.WorkItem{}, tts.ErrQueueEmpty
	}

	item := q.items[0]
	q.items[0] = tts.WorkItem{}
	q.items = q.items[1:]

	q.stats.TotalDequeued++
	q.stats.LastDequeue = time.Now()
	q.stats.CurrentSize = len(q.items)

	return item, nil
}

// Len returns the number of queued items.
func (q *Pending) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return len(q.items)
}

// Stats returns a snapshot of queue statistics.
func (q *Pending) Stats() Stats {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return q.stats
}

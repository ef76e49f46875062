package engine

import (
	"container/heap"
	"time"

	"kassa/internal/models"
)

// WaitQueue holds unsatisfied booking requests, ordered by join time. It is
// a binary min-heap used as a FIFO: every insertion stamps "now", so
// extraction order equals insertion order for entries inserted once. An
// entry re-inserted after partial satisfaction gets a fresh stamp and is
// treated as a brand-new arrival; re-queued remainders go to the back, not
// the front.
type WaitQueue struct {
	h   waitHeap
	seq uint64
}

type waitItem struct {
	entry models.WaitlistEntry
	seq   uint64 // insertion order, breaks join-time ties
}

type waitHeap []waitItem

func (h waitHeap) Len() int { return len(h) }

func (h waitHeap) Less(i, j int) bool {
	if h[i].entry.JoinedAt.Equal(h[j].entry.JoinedAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].entry.JoinedAt.Before(h[j].entry.JoinedAt)
}

func (h waitHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *waitHeap) Push(x any) { *h = append(*h, x.(waitItem)) }

func (h *waitHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func NewWaitQueue() *WaitQueue {
	return &WaitQueue{}
}

func (q *WaitQueue) Len() int { return q.h.Len() }

func (q *WaitQueue) IsEmpty() bool { return q.h.Len() == 0 }

// Insert adds an entry stamped with joinedAt. O(log n).
func (q *WaitQueue) Insert(identity models.Identity, requestedSeats int, joinedAt time.Time) {
	q.seq++
	heap.Push(&q.h, waitItem{
		entry: models.WaitlistEntry{
			Identity:       identity,
			RequestedSeats: requestedSeats,
			JoinedAt:       joinedAt,
		},
		seq: q.seq,
	})
}

// ExtractEarliest removes and returns the smallest-timestamp entry. O(log n).
func (q *WaitQueue) ExtractEarliest() (models.WaitlistEntry, bool) {
	if q.h.Len() == 0 {
		return models.WaitlistEntry{}, false
	}
	item := heap.Pop(&q.h).(waitItem)
	return item.entry, true
}

// Snapshot returns the entries in service order. It copies the heap, so the
// result is a stable snapshot, not a live view.
func (q *WaitQueue) Snapshot() []models.WaitlistEntry {
	tmp := make(waitHeap, len(q.h))
	copy(tmp, q.h)
	out := make([]models.WaitlistEntry, 0, len(tmp))
	for tmp.Len() > 0 {
		out = append(out, heap.Pop(&tmp).(waitItem).entry)
	}
	return out
}

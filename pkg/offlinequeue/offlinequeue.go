// Package offlinequeue holds messages addressed to a room participant who
// is not currently connected, so they can be delivered on reconnect. This
// is the C8 component: a bounded per-room FIFO with a drop-oldest overflow
// policy (SPEC_FULL.md §9 resolves the capacity Open Question at
// ROOMCORE_OFFLINE_QUEUE_CAP, default 256). It is explicitly not durable
// (spec.md Non-goals): a process restart loses every queued message.
package offlinequeue

import (
	"sync"
	"time"

	"github.com/quietroom/core/pkg/ids"
)

// DefaultCapacity is the per-room queue capacity used when none is
// configured.
const DefaultCapacity = 256

// Entry is a plaintext snapshot of a message sent while no peer was
// present, retained only in memory for delivery to the next joiner
// (spec.md §3: "a plaintext snapshot retained in memory for later
// delivery to a late joiner").
type Entry struct {
	MessageID  ids.ID
	Content    string
	SenderRole string
	SenderID   ids.ID // ids.Nil for a patient sender
	Language   string
	Timestamp  time.Time
	IsAudio    bool
}

// Queue is a concurrency-safe collection of bounded per-room FIFOs.
type Queue struct {
	mu       sync.Mutex
	capacity int
	rooms    map[ids.ID][]Entry
	dropped  map[ids.ID]int
}

// New constructs a Queue with the given per-room capacity. A capacity of
// 0 selects DefaultCapacity.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		capacity: capacity,
		rooms:    make(map[ids.ID][]Entry),
		dropped:  make(map[ids.ID]int),
	}
}

// Push enqueues entry for roomID. If the room's queue is already at
// capacity, the oldest entry is dropped to make room (drop-oldest
// overflow) and the room's drop counter is incremented.
func (q *Queue) Push(roomID ids.ID, entry Entry) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.rooms[roomID]
	if len(pending) >= q.capacity {
		pending = pending[1:]
		q.dropped[roomID]++
	}
	q.rooms[roomID] = append(pending, entry)
}

// Drain removes and returns every queued entry for roomID, oldest first.
func (q *Queue) Drain(roomID ids.ID) []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.rooms[roomID]
	if len(pending) == 0 {
		return nil
	}
	delete(q.rooms, roomID)
	return pending
}

// Len reports how many entries are currently queued for roomID.
func (q *Queue) Len(roomID ids.ID) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.rooms[roomID])
}

// Dropped reports how many entries have been dropped for roomID due to
// overflow since the Queue was created or the room was last cleared.
// Drain does not reset this counter.
func (q *Queue) Dropped(roomID ids.ID) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped[roomID]
}

// Clear discards every queued entry and the drop counter for roomID.
func (q *Queue) Clear(roomID ids.ID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.rooms, roomID)
	delete(q.dropped, roomID)
}

package offlinequeue

import (
	"testing"

	"github.com/quietroom/core/pkg/ids"
)

func TestPushDrainOrder(t *testing.T) {
	q := New(0)
	room := ids.New()

	e1 := Entry{MessageID: ids.New(), Content: "a"}
	e2 := Entry{MessageID: ids.New(), Content: "b"}
	q.Push(room, e1)
	q.Push(room, e2)

	got := q.Drain(room)
	if len(got) != 2 || got[0].Content != "a" || got[1].Content != "b" {
		t.Fatalf("unexpected drain order: %+v", got)
	}
	if q.Len(room) != 0 {
		t.Fatalf("expected empty queue after drain, got len %d", q.Len(room))
	}
}

func TestDropOldestOnOverflow(t *testing.T) {
	q := New(2)
	room := ids.New()

	q.Push(room, Entry{Content: "1"})
	q.Push(room, Entry{Content: "2"})
	q.Push(room, Entry{Content: "3"})

	got := q.Drain(room)
	if len(got) != 2 {
		t.Fatalf("expected capacity-bounded length 2, got %d", len(got))
	}
	if got[0].Content != "2" || got[1].Content != "3" {
		t.Fatalf("expected oldest entry dropped, got %+v", got)
	}
	if q.Dropped(room) != 1 {
		t.Fatalf("expected 1 dropped entry recorded, got %d", q.Dropped(room))
	}
}

func TestDrainEmptyRoom(t *testing.T) {
	q := New(0)
	room := ids.New()
	if got := q.Drain(room); got != nil {
		t.Fatalf("expected nil for empty room, got %+v", got)
	}
}

func TestClear(t *testing.T) {
	q := New(0)
	room := ids.New()
	q.Push(room, Entry{Content: "x"})
	q.Clear(room)
	if q.Len(room) != 0 {
		t.Fatalf("expected cleared queue to have length 0")
	}
	if q.Dropped(room) != 0 {
		t.Fatalf("expected cleared queue to reset drop counter")
	}
}

func TestDefaultCapacityApplied(t *testing.T) {
	q := New(-5)
	if q.capacity != DefaultCapacity {
		t.Fatalf("expected default capacity %d, got %d", DefaultCapacity, q.capacity)
	}
}

func TestRoomsAreIndependent(t *testing.T) {
	q := New(1)
	roomA, roomB := ids.New(), ids.New()
	q.Push(roomA, Entry{Content: "a1"})
	q.Push(roomB, Entry{Content: "b1"})
	q.Push(roomA, Entry{Content: "a2"})

	if q.Dropped(roomA) != 1 {
		t.Fatalf("expected roomA to have dropped an entry")
	}
	if q.Dropped(roomB) != 0 {
		t.Fatalf("expected roomB untouched by roomA overflow")
	}
}

package transport

import (
	"sync"

	"github.com/quietroom/core/pkg/ids"
)

// FakeSocket is an in-memory Socket used by coordinator tests, recording
// every sent frame instead of writing to a real connection (grounded on
// the teacher's test/integration/testpair.go in-memory fake-pair idiom).
type FakeSocket struct {
	id ids.ID

	mu     sync.Mutex
	frames []Frame
	closed bool
}

// NewFakeSocket constructs a FakeSocket with a fresh identity.
func NewFakeSocket() *FakeSocket {
	return &FakeSocket{id: ids.New()}
}

// ID implements Socket.
func (s *FakeSocket) ID() ids.ID { return s.id }

// Send implements Socket.
func (s *FakeSocket) Send(frame Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frame)
}

// Close implements Socket.
func (s *FakeSocket) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Frames returns a snapshot of every frame sent to this socket so far.
func (s *FakeSocket) Frames() []Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Frame(nil), s.frames...)
}

// Last returns the most recently sent frame, or the zero Frame if none.
func (s *FakeSocket) Last() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return Frame{}
	}
	return s.frames[len(s.frames)-1]
}

// Closed reports whether Close has been called.
func (s *FakeSocket) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

var _ Socket = (*FakeSocket)(nil)

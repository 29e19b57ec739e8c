package realtime

import (
	"sync"

	"github.com/ashureev/agri-advisor/internal/domain"
)

// Transcript is a fixed-size ring of conversation messages. Prevents
// unbounded growth during long chat sessions; when full, the oldest
// message is overwritten. Messages come out in receive order.
type Transcript struct {
	mu   sync.RWMutex
	buf  []domain.ChatMessage
	size int
	head int
	full bool
}

// NewTranscript creates a transcript holding at most size messages.
func NewTranscript(size int) *Transcript {
	if size <= 0 {
		size = 200
	}
	return &Transcript{
		buf:  make([]domain.ChatMessage, size),
		size: size,
	}
}

// Append adds a message, overwriting the oldest when full.
func (t *Transcript) Append(msg domain.ChatMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf[t.head] = msg
	t.head = (t.head + 1) % t.size
	if t.head == 0 {
		t.full = true
	}
}

// Messages returns the transcript contents oldest first.
func (t *Transcript) Messages() []domain.ChatMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.full {
		out := make([]domain.ChatMessage, t.head)
		copy(out, t.buf[:t.head])
		return out
	}

	out := make([]domain.ChatMessage, 0, t.size)
	out = append(out, t.buf[t.head:]...)
	out = append(out, t.buf[:t.head]...)
	return out
}

// Len returns the number of messages held.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.full {
		return t.size
	}
	return t.head
}

// Reset clears the transcript, used when switching conversations.
func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.head = 0
	t.full = false
}

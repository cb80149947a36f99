package ai

import (
	"sync"

	"github.com/aurix-ai/aurix/internal/models"
)

// workingWindowSize bounds how many recent messages are serialized into an
// outgoing request when memory optimization is on. It limits the tokens
// sent, not what the history retains.
const workingWindowSize = 5

// History is the bounded, ordered conversation state owned by one inference
// client. Appends trim from the head once the limit is exceeded. All access
// is serialized so concurrent callers cannot interleave the message order.
type History struct {
	mu       sync.Mutex
	messages []models.Message
	limit    int
	memOpt   bool
}

// NewHistory creates a conversation history with the given retention limit
func NewHistory(limit int, memoryOptimization bool) *History {
	if limit <= 0 {
		limit = 10
	}
	return &History{
		limit:  limit,
		memOpt: memoryOptimization,
	}
}

// Append adds a message at the tail, evicting oldest entries first when the
// retention limit is exceeded
func (h *History) Append(msg models.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, msg)
	if len(h.messages) > h.limit {
		h.messages = h.messages[len(h.messages)-h.limit:]
	}
}

// WorkingWindow returns the messages to serialize into the next request:
// the full history, or only the most recent entries when memory
// optimization is enabled. The returned slice is a copy.
func (h *History) WorkingWindow() []models.Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	window := h.messages
	if h.memOpt && len(window) > workingWindowSize {
		window = window[len(window)-workingWindowSize:]
	}
	return append([]models.Message(nil), window...)
}

// Len returns the number of retained messages
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Clear empties the history. Safe to call repeatedly.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}

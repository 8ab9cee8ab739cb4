package errors

import (
	"sync"
	"time"
)

// DefaultHistory is how many messages a TUIHandler keeps.
const DefaultHistory = 50

// Message is one status-line entry.
type Message struct {
	Text      string
	Type      MessageType
	Timestamp time.Time
}

type MessageType int

const (
	MessageTypeError MessageType = iota
	MessageTypeWarning
	MessageTypeInfo
	MessageTypeSuccess
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeError:
		return "error"
	case MessageTypeWarning:
		return "warning"
	case MessageTypeSuccess:
		return "success"
	default:
		return "info"
	}
}

// TUIHandler keeps a bounded history of messages for the status line and
// forwards each new message to onMessage.
type TUIHandler struct {
	mu        sync.RWMutex
	messages  []Message
	limit     int
	onMessage func(msg Message)
	now       func() time.Time
}

func NewTUIHandler(onMessage func(msg Message)) *TUIHandler {
	return &TUIHandler{
		limit:     DefaultHistory,
		onMessage: onMessage,
		now:       time.Now,
	}
}

func (h *TUIHandler) Error(msg string)   { h.add(msg, MessageTypeError) }
func (h *TUIHandler) Warning(msg string) { h.add(msg, MessageTypeWarning) }
func (h *TUIHandler) Info(msg string)    { h.add(msg, MessageTypeInfo) }
func (h *TUIHandler) Success(msg string) { h.add(msg, MessageTypeSuccess) }

// add records the message and calls onMessage after releasing the lock so the
// callback may read the handler.
func (h *TUIHandler) add(text string, typ MessageType) {
	h.mu.Lock()
	msg := Message{Text: text, Type: typ, Timestamp: h.now()}
	h.messages = append(h.messages, msg)
	if over := len(h.messages) - h.limit; over > 0 {
		h.messages = append(h.messages[:0:0], h.messages[over:]...)
	}
	cb := h.onMessage
	h.mu.Unlock()

	if cb != nil {
		cb(msg)
	}
}

func (h *TUIHandler) GetLatest() (Message, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.messages) == 0 {
		return Message{}, false
	}
	return h.messages[len(h.messages)-1], true
}

// Current returns the latest message if it is younger than ttl.
func (h *TUIHandler) Current(ttl time.Duration) (Message, bool) {
	msg, ok := h.GetLatest()
	if !ok || h.now().Sub(msg.Timestamp) > ttl {
		return Message{}, false
	}
	return msg, true
}

func (h *TUIHandler) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}

func (h *TUIHandler) GetAll() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

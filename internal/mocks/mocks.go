// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sync"

	"github.com/joshsymonds/relaybot/internal/chat"
)

// firstMessageID is the ID assigned to the first delivered message.
const firstMessageID = 1000

// Compile-time checks to ensure mocks implement their interfaces.
var (
	_ chat.Transport = (*MockTransport)(nil)
)

// SentContent records a Send call.
type SentContent struct {
	Content   chat.Content
	Chat      int64
	MessageID int
}

// ForwardCall records a Forward call.
type ForwardCall struct {
	Chat      int64
	From      int64
	MessageID int
	Delivered int
}

// Notice records a Notice or Menu call.
type Notice struct {
	Text string
	Chat int64
	Menu bool
}

// MockTransport is a test implementation of the Transport interface. Every
// delivered message gets a fresh, increasing ID.
type MockTransport struct {
	sendErr    error
	forwardErr error
	noticeErr  error
	sent       []SentContent
	forwards   []ForwardCall
	notices    []Notice
	calls      int
	nextID     int
	mu         sync.Mutex

	// NoticeFunc allows tests to fail notices selectively
	NoticeFunc func(chat int64, text string) error
}

// NewMockTransport creates a new mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{nextID: firstMessageID}
}

// Send implements the Transport interface.
func (m *MockTransport) Send(_ context.Context, chatID int64, content chat.Content) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.sendErr != nil {
		return 0, m.sendErr
	}

	id := m.nextID
	m.nextID++
	m.sent = append(m.sent, SentContent{Chat: chatID, Content: content, MessageID: id})
	return id, nil
}

// Forward implements the Transport interface.
func (m *MockTransport) Forward(_ context.Context, chatID int64, from int64, messageID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.forwardErr != nil {
		return 0, m.forwardErr
	}

	id := m.nextID
	m.nextID++
	m.forwards = append(m.forwards, ForwardCall{
		Chat:      chatID,
		From:      from,
		MessageID: messageID,
		Delivered: id,
	})
	return id, nil
}

// Notice implements the Transport interface.
func (m *MockTransport) Notice(_ context.Context, chatID int64, text string) error {
	return m.notice(Notice{Chat: chatID, Text: text})
}

// Menu implements the Transport interface. Menus are recorded as notices
// with Menu set and fail the same way notices do.
func (m *MockTransport) Menu(_ context.Context, chatID int64, text string) error {
	return m.notice(Notice{Chat: chatID, Text: text, Menu: true})
}

func (m *MockTransport) notice(n Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.noticeErr != nil {
		return m.noticeErr
	}
	if m.NoticeFunc != nil {
		if err := m.NoticeFunc(n.Chat, n.Text); err != nil {
			return err
		}
	}

	m.notices = append(m.notices, n)
	return nil
}

// SetSendError makes every Send fail with err.
func (m *MockTransport) SetSendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// SetForwardError makes every Forward fail with err.
func (m *MockTransport) SetForwardError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forwardErr = err
}

// SetNoticeError makes every Notice fail with err.
func (m *MockTransport) SetNoticeError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.noticeErr = err
}

// Sent returns successful Send calls.
func (m *MockTransport) Sent() []SentContent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentContent, len(m.sent))
	copy(out, m.sent)
	return out
}

// Forwards returns successful Forward calls.
func (m *MockTransport) Forwards() []ForwardCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ForwardCall, len(m.forwards))
	copy(out, m.forwards)
	return out
}

// Notices returns successful Notice calls.
func (m *MockTransport) Notices() []Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Notice, len(m.notices))
	copy(out, m.notices)
	return out
}

// NoticesTo returns the texts of successful notices sent to chatID.
func (m *MockTransport) NoticesTo(chatID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, n := range m.notices {
		if n.Chat == chatID {
			out = append(out, n.Text)
		}
	}
	return out
}

// Calls returns the number of transport calls, failed ones included.
func (m *MockTransport) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Reset clears recorded calls and errors.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
	m.forwards = nil
	m.notices = nil
	m.calls = 0
	m.sendErr = nil
	m.forwardErr = nil
	m.noticeErr = nil
	m.NoticeFunc = nil
}

package notify

import (
	"context"
	"sync"
)

// MockSender records every email instead of delivering it. FailTo forces an error
// for the listed recipients.
type MockSender struct {
	Err    error
	FailTo map[string]bool

	mu   sync.Mutex
	sent []Email
}

func (m *MockSender) Send(ctx context.Context, e Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, to := range e.To {
		if m.FailTo[to] && m.Err != nil {
			return m.Err
		}
	}
	if m.Err != nil && len(m.FailTo) == 0 {
		return m.Err
	}
	m.mu.Lock()
	m.sent = append(m.sent, e)
	m.mu.Unlock()
	return nil
}

func (m *MockSender) Sent() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Email(nil), m.sent...)
}

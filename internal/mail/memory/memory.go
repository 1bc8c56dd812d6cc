package memory

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"kharcha/internal/mail"
)

// Mailbox is an in-memory mail.Provider used by tests and local
// development. Messages are served in insertion order; pagination
// follows the configured page size regardless of the requested one so
// tests can force multi-page listings.
type Mailbox struct {
	mu       sync.Mutex
	messages []mail.Message
	pageSize int

	listErr error
	getErr  error
}

var _ mail.Provider = (*Mailbox)(nil)

func New() *Mailbox {
	return &Mailbox{}
}

// AddPlainMessage appends a single-part text message.
func (m *Mailbox) AddPlainMessage(subject, from, date, body string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := fmt.Sprintf("msg-%d", len(m.messages)+1)
	m.messages = append(m.messages, mail.Message{
		ID: id,
		Headers: []mail.Header{
			{Name: "Subject", Value: subject},
			{Name: "From", Value: from},
			{Name: "Date", Value: date},
		},
		Body: mail.Part{
			MimeType: "text/plain",
			Data:     base64.RawURLEncoding.EncodeToString([]byte(body)),
		},
	})
	return id
}

// SetPageSize forces listings to page with at most n ids.
func (m *Mailbox) SetPageSize(n int) {
	m.mu.Lock()
	m.pageSize = n
	m.mu.Unlock()
}

// FailWith makes subsequent calls return the given errors.
func (m *Mailbox) FailWith(listErr, getErr error) {
	m.mu.Lock()
	m.listErr = listErr
	m.getErr = getErr
	m.mu.Unlock()
}

func (m *Mailbox) ListMessageIDs(_ context.Context, _ string, pageToken string, pageSize int64) (mail.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return mail.Page{}, m.listErr
	}

	size := int(pageSize)
	if m.pageSize > 0 {
		size = m.pageSize
	}

	start := 0
	if pageToken != "" {
		if _, err := fmt.Sscanf(pageToken, "page-%d", &start); err != nil {
			return mail.Page{}, fmt.Errorf("bad page token %q", pageToken)
		}
	}

	end := start + size
	if end > len(m.messages) {
		end = len(m.messages)
	}

	var page mail.Page
	for _, msg := range m.messages[start:end] {
		page.IDs = append(page.IDs, msg.ID)
	}
	if end < len(m.messages) {
		page.NextPageToken = fmt.Sprintf("page-%d", end)
	}
	return page, nil
}

func (m *Mailbox) GetMessage(_ context.Context, id string) (mail.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return mail.Message{}, m.getErr
	}
	for _, msg := range m.messages {
		if msg.ID == id {
			return msg, nil
		}
	}
	return mail.Message{}, fmt.Errorf("message %s not found", id)
}

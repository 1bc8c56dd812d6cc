package core

import (
	"errors"
	"strings"
	"time"
)

const (
	SourceGmail  Source = "gmail"
	SourceSMS    Source = "sms"
	SourceManual Source = "manual"

	// SourceAll is a filter value, never stored on a record.
	SourceAll Source = "all"
)

type (
	Source string

	// Date is a civil date. Time of day is always midnight UTC and is
	// never persisted; records carry the YYYY-MM-DD form only.
	Date struct {
		time.Time
	}

	Expense struct {
		ID          int64     `json:"id"`
		Source      Source    `json:"source"`
		Date        Date      `json:"date"`
		Merchant    string    `json:"merchant"`
		Description string    `json:"description"`
		Amount      float64   `json:"amount"`
		Raw         string    `json:"-"`
		CreatedAt   time.Time `json:"-"`
	}

	Todo struct {
		ID        int64
		Text      string
		Done      bool
		CreatedAt time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	ErrInvalidSource = errors.New("invalid expense source")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyText     = errors.New("empty text")
	ErrTodoNotFound  = errors.New("todo not found")

	ErrNotConfigured = errors.New("mail provider not configured")
	ErrNotConnected  = errors.New("mail provider not connected")
	ErrStateExpired  = errors.New("auth state expired")
	ErrUpstream      = errors.New("upstream provider error")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current civil date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO returns the YYYY-MM-DD form used for storage and sorting.
func (d Date) ISO() string {
	return d.Format(dateLayout)
}

// MonthKey returns the YYYY-MM prefix used for monthly grouping.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ValidSource reports whether s names a real ingestion source.
// SourceAll is only meaningful as a query filter.
func ValidSource(s Source) bool {
	switch s {
	case SourceGmail, SourceSMS, SourceManual:
		return true
	}
	return false
}

// Validate checks a manually entered expense before it is appended to
// the ledger. Records arriving from mail sync are trusted after amount
// extraction and do not pass through here.
func (e Expense) Validate() error {
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !ValidSource(e.Source) {
		return ErrInvalidSource
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"kharcha/internal/core"
	"kharcha/internal/mail"
	"kharcha/internal/mail/memory"
	"kharcha/internal/storage"
)

type stubCapability struct {
	provider mail.Provider
	err      error
}

func (s stubCapability) Provider(context.Context) (mail.Provider, error) {
	return s.provider, s.err
}

func testSyncService(t *testing.T, capability MailCapability) (*SyncService, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewSyncService(repo, capability, nil, 50), repo
}

func TestSyncInsertsParseableMessages(t *testing.T) {
	box := memory.New()
	box.AddPlainMessage("Payment successful", "Acme Pay <no-reply@acme.example>", "Mon, 11 Aug 2025 10:30:00 +0530", "You paid Rs. 1,299.00 for order #42")
	box.AddPlainMessage("Your OTP", "Acme Pay <no-reply@acme.example>", "Mon, 11 Aug 2025 11:00:00 +0530", "Use code 123456 to log in")
	box.AddPlainMessage("Debited", "Big Bank <alerts@bank.example>", "Tue, 12 Aug 2025 09:00:00 +0530", "INR 310.45 debited from your account")

	svc, repo := testSyncService(t, stubCapability{provider: box})

	added, err := svc.Sync(context.Background(), 60)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if added != 2 {
		t.Fatalf("expected 2 inserted, got %d", added)
	}

	rows, err := repo.QueryExpenses(context.Background(), "", core.SourceGmail)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 gmail rows, got %d", len(rows))
	}

	// Newest first: the bank debit from Aug 12.
	first := rows[0]
	if first.Amount != 310.45 {
		t.Errorf("expected amount 310.45, got %v", first.Amount)
	}
	if first.Merchant != "Big Bank" {
		t.Errorf("expected merchant from display name, got %q", first.Merchant)
	}
	if first.Description != "Debited" {
		t.Errorf("expected subject as description, got %q", first.Description)
	}
	if first.Date.ISO() != "2025-08-12" {
		t.Errorf("expected header date, got %s", first.Date.ISO())
	}
	if first.Raw == "" {
		t.Error("expected raw snapshot recorded")
	}

	if rows[1].Amount != 1299 {
		t.Errorf("expected max amount 1299 from order email, got %v", rows[1].Amount)
	}
}

func TestSyncPaginates(t *testing.T) {
	box := memory.New()
	box.SetPageSize(2)
	for i := 0; i < 5; i++ {
		box.AddPlainMessage("Payment successful", "Acme <a@b.example>", "Mon, 11 Aug 2025 10:30:00 +0530", "paid Rs. 100")
	}

	svc, _ := testSyncService(t, stubCapability{provider: box})

	added, err := svc.Sync(context.Background(), 60)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if added != 5 {
		t.Fatalf("expected all pages drained, got %d inserts", added)
	}
}

func TestSyncEmptyMailbox(t *testing.T) {
	svc, _ := testSyncService(t, stubCapability{provider: memory.New()})

	added, err := svc.Sync(context.Background(), 60)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if added != 0 {
		t.Fatalf("expected 0 inserts, got %d", added)
	}
}

func TestSyncAuthErrorsPassThrough(t *testing.T) {
	svc, _ := testSyncService(t, stubCapability{err: core.ErrNotConnected})

	if _, err := svc.Sync(context.Background(), 60); !errors.Is(err, core.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestSyncUpstreamFailure(t *testing.T) {
	box := memory.New()
	box.FailWith(errors.New("quota exceeded"), nil)

	svc, repo := testSyncService(t, stubCapability{provider: box})

	_, err := svc.Sync(context.Background(), 60)
	if !errors.Is(err, core.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}

	rows, err := repo.QueryExpenses(context.Background(), "", core.SourceAll)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows after failed listing, got %d", len(rows))
	}
}

func TestRawSnapshotTruncated(t *testing.T) {
	long := make([]byte, 3000)
	for i := range long {
		long[i] = 'a'
	}
	raw := rawSnapshot(string(long), "x@y.example")
	if len(raw) != rawSnapshotLimit {
		t.Fatalf("expected snapshot capped at %d bytes, got %d", rawSnapshotLimit, len(raw))
	}
}

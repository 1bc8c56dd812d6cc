package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/mail"
	"kharcha/internal/storage"
)

const rawSnapshotLimit = 1000

// MailCapability hands out an authenticated provider, or one of the
// core auth sentinels when the capability is not usable yet.
type MailCapability interface {
	Provider(ctx context.Context) (mail.Provider, error)
}

// SyncService pulls payment-looking emails and appends the ones with a
// recognizable amount to the ledger.
type SyncService struct {
	storage    *storage.SQLiteRepository
	mail       MailCapability
	amqpClient *amqp.Client
	pageSize   int64
	today      func() core.Date
}

func NewSyncService(storage *storage.SQLiteRepository, capability MailCapability, amqpClient *amqp.Client, pageSize int64) *SyncService {
	return &SyncService{
		storage:    storage,
		mail:       capability,
		amqpClient: amqpClient,
		pageSize:   pageSize,
		today:      core.Today,
	}
}

// Sync scans the last days of mail and returns how many expenses were
// inserted. Messages without an extractable amount are skipped
// silently; provider failures abort the run as core.ErrUpstream.
func (s *SyncService) Sync(ctx context.Context, days int) (int, error) {
	provider, err := s.mail.Provider(ctx)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`newer_than:%dd ("payment successful" OR "payment of Rs" OR "debited" OR "order placed" OR "invoice")`, days)
	slog.InfoContext(ctx, "Mail sync started", "window_days", days)

	added := 0
	pageToken := ""
	for {
		page, err := provider.ListMessageIDs(ctx, query, pageToken, s.pageSize)
		if err != nil {
			return added, fmt.Errorf("%w: list messages: %v", core.ErrUpstream, err)
		}
		if len(page.IDs) == 0 {
			break
		}

		for _, id := range page.IDs {
			msg, err := provider.GetMessage(ctx, id)
			if err != nil {
				return added, fmt.Errorf("%w: fetch message: %v", core.ErrUpstream, err)
			}

			n := mail.Normalize(msg, s.today())
			amount, ok := core.ExtractAmount(n.Subject + "\n" + n.Body)
			if !ok {
				continue
			}

			if _, err := s.storage.InsertExpense(ctx, core.Expense{
				Source:      core.SourceGmail,
				Date:        n.Date,
				Merchant:    mail.DisplayName(n.From),
				Description: n.Subject,
				Amount:      amount,
				Raw:         rawSnapshot(n.Subject, n.From),
			}); err != nil {
				return added, fmt.Errorf("save synced expense: %w", err)
			}
			added++
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	slog.InfoContext(ctx, "Mail sync completed", "added", added, "window_days", days)

	if s.amqpClient != nil {
		if err := s.amqpClient.PublishSyncCompleted(ctx, added, days); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync event", "error", err)
		}
	}

	return added, nil
}

// rawSnapshot keeps a bounded provenance record of the source email.
func rawSnapshot(subject, from string) string {
	blob, err := json.Marshal(struct {
		Subject string `json:"subject"`
		From    string `json:"from"`
	}{subject, from})
	if err != nil {
		return ""
	}
	if len(blob) > rawSnapshotLimit {
		blob = blob[:rawSnapshotLimit]
	}
	return string(blob)
}

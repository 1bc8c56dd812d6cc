package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"kharcha/internal/core"
	"kharcha/internal/mail"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	goption "google.golang.org/api/option"
)

// Settings keys holding the OAuth client config blob and the user token.
const (
	SettingClientConfig = "gmail_client_config"
	SettingToken        = "gmail_token"
)

// Connection status, surfaced verbatim on the dashboard.
const (
	StatusNotConfigured = "Gmail not configured."
	StatusNotConnected  = "Gmail not connected."
	StatusConnected     = "Gmail connected."
)

// SettingsStore is the slice of the repository the capability needs.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Service is the optional Gmail capability. Everything it needs lives
// in the settings table, so a deployment without a saved client config
// simply reports not-configured instead of failing at startup.
type Service struct {
	settings    SettingsStore
	redirectURL string
}

func NewService(settings SettingsStore, baseURL string) *Service {
	return &Service{
		settings:    settings,
		redirectURL: strings.TrimRight(baseURL, "/") + "/api/gmail/callback",
	}
}

// OAuthConfig builds the OAuth client config from the stored blob,
// pointed at this deployment's callback URL. Reports
// core.ErrNotConfigured when no blob has been saved.
func (s *Service) OAuthConfig(ctx context.Context) (*oauth2.Config, error) {
	blob, err := s.settings.GetSetting(ctx, SettingClientConfig)
	if err != nil {
		return nil, fmt.Errorf("load client config: %w", err)
	}
	if blob == "" {
		return nil, core.ErrNotConfigured
	}

	cfg, err := google.ConfigFromJSON([]byte(blob), gmailapi.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse client config: %w", err)
	}
	cfg.RedirectURL = s.redirectURL
	return cfg, nil
}

// SaveToken persists an exchanged token for later provider builds.
func (s *Service) SaveToken(ctx context.Context, tok *oauth2.Token) error {
	blob, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := s.settings.SetSetting(ctx, SettingToken, string(blob)); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// Status reports the capability's connection state for the dashboard.
func (s *Service) Status(ctx context.Context) string {
	cfg, err := s.settings.GetSetting(ctx, SettingClientConfig)
	if err != nil || cfg == "" {
		return StatusNotConfigured
	}
	tok, err := s.settings.GetSetting(ctx, SettingToken)
	if err != nil || tok == "" {
		return StatusNotConnected
	}
	return StatusConnected
}

// Provider builds an authenticated Gmail client. An expired access
// token is refreshed through the token source and the refreshed token
// written back to settings, so the next build skips the round trip.
func (s *Service) Provider(ctx context.Context) (mail.Provider, error) {
	cfg, err := s.OAuthConfig(ctx)
	if err != nil {
		return nil, err
	}

	blob, err := s.settings.GetSetting(ctx, SettingToken)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if blob == "" {
		return nil, core.ErrNotConnected
	}

	var tok oauth2.Token
	if err := json.Unmarshal([]byte(blob), &tok); err != nil {
		return nil, fmt.Errorf("%w: stored token unreadable", core.ErrNotConnected)
	}

	ts := cfg.TokenSource(ctx, &tok)
	fresh, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: token refresh failed: %v", core.ErrNotConnected, err)
	}
	if fresh.AccessToken != tok.AccessToken {
		if err := s.SaveToken(ctx, fresh); err != nil {
			slog.WarnContext(ctx, "Failed to persist refreshed token", "error", err)
		} else {
			slog.InfoContext(ctx, "Refreshed Gmail token persisted")
		}
	}

	svc, err := gmailapi.NewService(ctx, goption.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}

	return &Client{svc: svc}, nil
}

// Client adapts the Gmail API to the mail.Provider port.
type Client struct {
	svc *gmailapi.Service
}

var _ mail.Provider = (*Client)(nil)

func (c *Client) ListMessageIDs(ctx context.Context, query, pageToken string, pageSize int64) (mail.Page, error) {
	call := c.svc.Users.Messages.List("me").Q(query).MaxResults(pageSize).Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return mail.Page{}, fmt.Errorf("list messages: %w", err)
	}

	page := mail.Page{NextPageToken: resp.NextPageToken}
	for _, m := range resp.Messages {
		page.IDs = append(page.IDs, m.Id)
	}
	return page, nil
}

func (c *Client) GetMessage(ctx context.Context, id string) (mail.Message, error) {
	m, err := c.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return mail.Message{}, fmt.Errorf("get message %s: %w", id, err)
	}

	msg := mail.Message{ID: m.Id}
	if m.Payload == nil {
		return msg, nil
	}
	for _, h := range m.Payload.Headers {
		msg.Headers = append(msg.Headers, mail.Header{Name: h.Name, Value: h.Value})
	}
	if m.Payload.Body != nil {
		msg.Body = mail.Part{MimeType: m.Payload.MimeType, Data: m.Payload.Body.Data}
	}
	for _, p := range m.Payload.Parts {
		part := mail.Part{MimeType: p.MimeType}
		if p.Body != nil {
			part.Data = p.Body.Data
		}
		msg.Parts = append(msg.Parts, part)
	}
	return msg, nil
}

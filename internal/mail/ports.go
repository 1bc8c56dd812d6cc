package mail

import "context"

// Ports for mail providers. Message mirrors the shape of a fetched
// email closely enough that the sync orchestrator never imports a
// provider SDK.
type (
	Provider interface {
		// ListMessageIDs returns one page of message ids matching the
		// provider-side query. An empty NextPageToken ends pagination.
		ListMessageIDs(ctx context.Context, query, pageToken string, pageSize int64) (Page, error)

		// GetMessage fetches the full message for an id.
		GetMessage(ctx context.Context, id string) (Message, error)
	}

	Page struct {
		IDs           []string
		NextPageToken string
	}

	Header struct {
		Name  string
		Value string
	}

	// Part is one MIME part. Data holds the URL-safe base64 payload as
	// delivered by the provider.
	Part struct {
		MimeType string
		Data     string
	}

	Message struct {
		ID      string
		Headers []Header
		Body    Part
		Parts   []Part
	}
)

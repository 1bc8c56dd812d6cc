package mail

import (
	"encoding/base64"
	netmail "net/mail"
	"strings"

	"kharcha/internal/core"
)

// Normalized is the provider-neutral view of one email: the fields the
// sync pipeline actually reads.
type Normalized struct {
	Date    core.Date
	From    string
	Subject string
	Body    string
}

// Normalize extracts date, sender, subject and plain-text body from a
// fetched message. Header lookup is case-insensitive. An unparseable
// Date header falls back to fallbackDate rather than failing the
// message. For multipart messages the first text/plain part wins;
// otherwise the single body is used.
func Normalize(msg Message, fallbackDate core.Date) Normalized {
	n := Normalized{
		Date:    fallbackDate,
		From:    headerValue(msg.Headers, "From"),
		Subject: headerValue(msg.Headers, "Subject"),
	}

	if raw := headerValue(msg.Headers, "Date"); raw != "" {
		if t, err := netmail.ParseDate(raw); err == nil {
			n.Date = core.NewDate(t.Year(), int(t.Month()), t.Day())
		}
	}

	if len(msg.Parts) > 0 {
		for _, p := range msg.Parts {
			if p.MimeType == "text/plain" {
				n.Body = decodeBody(p.Data)
				break
			}
		}
	} else {
		n.Body = decodeBody(msg.Body.Data)
	}

	return n
}

// DisplayName reduces a From header to the sender's display name: the
// portion before "<", trimmed. A bare address comes back unchanged.
func DisplayName(from string) string {
	if i := strings.Index(from, "<"); i >= 0 {
		if name := strings.TrimSpace(from[:i]); name != "" {
			return name
		}
	}
	return from
}

func headerValue(headers []Header, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// decodeBody decodes URL-safe base64 payloads, with or without
// padding. Decoding problems yield an empty string; a message body
// that cannot be read is never fatal to a sync run. Invalid UTF-8 in
// the decoded text is dropped.
func decodeBody(data string) string {
	if data == "" {
		return ""
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		if raw, err = base64.StdEncoding.DecodeString(data); err != nil {
			return ""
		}
	}
	return strings.ToValidUTF8(string(raw), "")
}

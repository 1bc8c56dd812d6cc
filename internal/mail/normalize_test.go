package mail

import (
	"encoding/base64"
	"testing"

	"kharcha/internal/core"
)

func b64(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestNormalizeHeaders(t *testing.T) {
	msg := Message{
		Headers: []Header{
			{Name: "SUBJECT", Value: "Payment successful"},
			{Name: "from", Value: "Acme Pay <no-reply@acme.example>"},
			{Name: "Date", Value: "Mon, 11 Aug 2025 10:30:00 +0530"},
		},
		Body: Part{MimeType: "text/plain", Data: b64("You paid Rs. 100")},
	}

	n := Normalize(msg, core.NewDate(2025, 8, 31))
	if n.Subject != "Payment successful" {
		t.Errorf("subject: got %q", n.Subject)
	}
	if n.From != "Acme Pay <no-reply@acme.example>" {
		t.Errorf("from: got %q", n.From)
	}
	if n.Date.ISO() != "2025-08-11" {
		t.Errorf("date: got %s", n.Date.ISO())
	}
	if n.Body != "You paid Rs. 100" {
		t.Errorf("body: got %q", n.Body)
	}
}

func TestNormalizeBadDateFallsBack(t *testing.T) {
	msg := Message{
		Headers: []Header{{Name: "Date", Value: "yesterday-ish"}},
	}
	fallback := core.NewDate(2025, 8, 31)
	n := Normalize(msg, fallback)
	if n.Date.ISO() != fallback.ISO() {
		t.Errorf("expected fallback date, got %s", n.Date.ISO())
	}
}

func TestNormalizeMultipartPicksFirstPlainText(t *testing.T) {
	msg := Message{
		Parts: []Part{
			{MimeType: "text/html", Data: b64("<b>nope</b>")},
			{MimeType: "text/plain", Data: b64("plain one")},
			{MimeType: "text/plain", Data: b64("plain two")},
		},
	}
	n := Normalize(msg, core.Today())
	if n.Body != "plain one" {
		t.Errorf("expected first text/plain part, got %q", n.Body)
	}
}

func TestNormalizeMultipartWithoutPlainText(t *testing.T) {
	msg := Message{
		Parts: []Part{{MimeType: "text/html", Data: b64("<b>html only</b>")}},
		Body:  Part{Data: b64("single body ignored when parts exist")},
	}
	n := Normalize(msg, core.Today())
	if n.Body != "" {
		t.Errorf("expected empty body, got %q", n.Body)
	}
}

func TestDecodeBody(t *testing.T) {
	cases := []struct {
		name string
		data string
		want string
	}{
		{"empty", "", ""},
		{"raw url encoding", b64("hello"), "hello"},
		{"padded url encoding", base64.URLEncoding.EncodeToString([]byte("hello")), "hello"},
		{"std encoding", base64.StdEncoding.EncodeToString([]byte("a+b/c?")), "a+b/c?"},
		{"garbage", "!!!not base64!!!", ""},
	}
	for _, tc := range cases {
		if got := decodeBody(tc.data); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Acme Pay <no-reply@acme.example>", "Acme Pay"},
		{"<bare@addr.example>", "<bare@addr.example>"},
		{"plain@addr.example", "plain@addr.example"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := DisplayName(tc.in); got != tc.want {
			t.Errorf("DisplayName(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

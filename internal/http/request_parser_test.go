package http

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func parserFor(body, contentType string) *RequestBodyParser {
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	return NewRequestBodyParser(req)
}

func TestParseJSONBody(t *testing.T) {
	p := parserFor(`{"amount": 12.5, "merchant": "Cafe", "note": "  trimmed  "}`, "application/json")
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !p.IsJSON() {
		t.Error("IsJSON() = false, want true")
	}
	if got := p.Get("merchant"); got != "Cafe" {
		t.Errorf("Get(merchant) = %q, want Cafe", got)
	}
	if got := p.Get("note"); got != "trimmed" {
		t.Errorf("Get(note) = %q, want trimmed", got)
	}
	if got, ok := p.GetFloat("amount"); !ok || got != 12.5 {
		t.Errorf("GetFloat(amount) = %v, %v, want 12.5, true", got, ok)
	}
}

func TestParseFormBody(t *testing.T) {
	p := parserFor("amount=99.90&merchant=Shop", "application/x-www-form-urlencoded")
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.IsJSON() {
		t.Error("IsJSON() = true, want false")
	}
	if got := p.Get("merchant"); got != "Shop" {
		t.Errorf("Get(merchant) = %q, want Shop", got)
	}
	if got, ok := p.GetFloat("amount"); !ok || got != 99.90 {
		t.Errorf("GetFloat(amount) = %v, %v, want 99.90, true", got, ok)
	}
}

func TestParseEmptyBody(t *testing.T) {
	p := parserFor("", "application/json")
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := p.Get("anything"); got != "" {
		t.Errorf("Get(anything) = %q, want empty", got)
	}
	if _, ok := p.GetFloat("amount"); ok {
		t.Error("GetFloat on empty body reported ok")
	}
}

func TestParseInvalidJSON(t *testing.T) {
	p := parserFor(`{"broken": `, "application/json")
	if err := p.Parse(); err == nil {
		t.Error("Parse() error = nil, want unmarshal failure")
	}
}

func TestGetFloatVariants(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		key    string
		want   float64
		wantOK bool
	}{
		{"json number", `{"v": 42}`, "v", 42, true},
		{"json decimal", `{"v": 3.14}`, "v", 3.14, true},
		{"json string number", `{"v": "27.5"}`, "v", 27.5, true},
		{"json non-numeric string", `{"v": "abc"}`, "v", 0, false},
		{"missing key", `{"other": 1}`, "v", 0, false},
		{"form number", "v=100", "v", 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parserFor(tt.body, "application/json")
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got, ok := p.GetFloat(tt.key)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("GetFloat(%s) = %v, %v, want %v, %v", tt.key, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestGetInt64(t *testing.T) {
	p := parserFor(`{"id": 7, "frac": 7.5}`, "application/json")
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got, ok := p.GetInt64("id"); !ok || got != 7 {
		t.Errorf("GetInt64(id) = %v, %v, want 7, true", got, ok)
	}
	if _, ok := p.GetInt64("frac"); ok {
		t.Error("GetInt64(frac) accepted a non-integral value")
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "hello"},
		{"strips control chars", "a\x00b\x07c", "abc"},
		{"keeps tabs and newlines", "a\tb\nc", "a\tb\nc"},
		{"trims whitespace", "  spaced  ", "spaced"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeInput(tt.input); got != tt.want {
				t.Errorf("sanitizeInput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

package security

import (
	"net/http/httptest"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name       string
		target     string
		userAgent  string
		suspicious bool
	}{
		{
			name:       "normal api call",
			target:     "/api/state?days=60",
			suspicious: false,
		},
		{
			name:       "path traversal",
			target:     "/static/../../etc/passwd",
			suspicious: true,
		},
		{
			name:       "wordpress probe",
			target:     "/wp-admin/setup.php",
			suspicious: true,
		},
		{
			name:       "file probe in query",
			target:     "/api/state?file=etc/passwd",
			suspicious: true,
		},
		{
			name:       "scanner user agent",
			target:     "/api/state",
			userAgent:  "sqlmap/1.7",
			suspicious: true,
		},
		{
			name:       "curl is a legitimate api client",
			target:     "/api/state",
			userAgent:  "curl/8.4.0",
			suspicious: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			if tt.userAgent != "" {
				r.Header.Set("User-Agent", tt.userAgent)
			}
			if got := d.DetectSuspiciousRequest(r); got != tt.suspicious {
				t.Errorf("DetectSuspiciousRequest(%s) = %v, want %v", tt.target, got, tt.suspicious)
			}
		})
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		expected   string
	}{
		{
			name:       "direct connection",
			remoteAddr: "203.0.113.9:54321",
			expected:   "203.0.113.9",
		},
		{
			name:       "behind trusted proxy",
			remoteAddr: "127.0.0.1:54321",
			xff:        "203.0.113.9",
			expected:   "203.0.113.9",
		},
		{
			name:       "forwarded header from untrusted peer is ignored",
			remoteAddr: "203.0.113.9:54321",
			xff:        "198.51.100.1",
			expected:   "203.0.113.9",
		},
		{
			name:       "first hop wins in a chain",
			remoteAddr: "10.0.0.5:443",
			xff:        "203.0.113.9, 10.0.0.5",
			expected:   "203.0.113.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/state", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := d.ExtractClientIP(r); got != tt.expected {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

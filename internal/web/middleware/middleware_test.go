package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/config"
)

// ----------------------------------------------------------------------------
// TrustedRealIP Tests
// ----------------------------------------------------------------------------

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		proxies    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "no proxies ignores headers",
			remoteAddr: "203.0.113.9:5000",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "203.0.113.9:5000",
		},
		{
			name:       "trusted proxy x-real-ip",
			proxies:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:5000",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "1.2.3.4",
		},
		{
			name:       "trusted proxy first forwarded hop",
			proxies:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:5000",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4, 10.9.9.9"},
			want:       "1.2.3.4",
		},
		{
			name:       "bare ip entry",
			proxies:    []string{"127.0.0.1"},
			remoteAddr: "127.0.0.1:5000",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "1.2.3.4",
		},
		{
			name:       "untrusted peer",
			proxies:    []string{"10.0.0.0/8"},
			remoteAddr: "203.0.113.9:5000",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "203.0.113.9:5000",
		},
		{
			name:       "garbage header kept out",
			proxies:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:5000",
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			want:       "10.1.2.3:5000",
		},
		{
			name:       "invalid proxy entry skipped",
			proxies:    []string{"proxy.local", "10.0.0.0/8"},
			remoteAddr: "10.1.2.3:5000",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "1.2.3.4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.proxies)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// APIKeyAuth Tests
// ----------------------------------------------------------------------------

func TestAPIKeyAuth_Disabled(t *testing.T) {
	h := APIKeyAuth(&config.SecurityConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want request passed through", rec.Code)
	}
}

func TestValidAPIKey(t *testing.T) {
	keys := []string{"alpha", "beta"}

	tests := []struct {
		key  string
		want bool
	}{
		{"alpha", true},
		{"beta", true},
		{"alph", false},
		{"alphaa", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := validAPIKey(tt.key, keys); got != tt.want {
			t.Errorf("validAPIKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
	if validAPIKey("alpha", nil) {
		t.Error("no configured keys should reject everything")
	}
}

// ----------------------------------------------------------------------------
// Logger Tests
// ----------------------------------------------------------------------------

func TestLogger_RecordsStatus(t *testing.T) {
	var sw *statusWriter
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw = w.(*statusWriter)
		w.WriteHeader(http.StatusNotFound)
		w.WriteHeader(http.StatusOK) // ignored
		_, _ = w.Write([]byte("missing"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if sw.status != http.StatusNotFound || sw.bytes != len("missing") {
		t.Errorf("statusWriter = (%d, %d), want (404, %d)", sw.status, sw.bytes, len("missing"))
	}
}

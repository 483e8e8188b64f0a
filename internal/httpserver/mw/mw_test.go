package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrSnakeDoc/reelmark/internal/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimitWritesOnly(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 2, RefillPerIPPerMin: 1, WritesOnly: true})(okHandler)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET #%d = %d, reads must not be limited", i, rec.Code)
		}
	}

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bookmarks", nil))
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") == "" {
			t.Error("429 without Retry-After")
		}
	}
	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("POST codes = %v, want %v", codes, want)
			break
		}
	}
}

func TestRateLimitPerClient(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 1, RefillPerIPPerMin: 1})(okHandler)

	for _, addr := range []string{"10.0.0.1:1234", "10.0.0.2:1234"} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("first request from %s = %d, want 200", addr, rec.Code)
		}
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name      string
		origins   []string
		origin    string
		method    string
		wantAllow []string
		preflight bool
	}{
		{"disabled", nil, "https://ui.example.com", http.MethodGet, []string{""}, false},
		{"listed", []string{"https://ui.example.com/"}, "https://ui.example.com", http.MethodGet, []string{"https://ui.example.com"}, false},
		{"not listed", []string{"https://ui.example.com"}, "https://evil.example.com", http.MethodGet, []string{""}, false},
		{"wildcard", []string{"*"}, "http://localhost:5173", http.MethodGet, []string{"*", "http://localhost:5173"}, false},
		{"preflight", []string{"*"}, "http://localhost:5173", http.MethodOptions, []string{"*", "http://localhost:5173"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/bookmarks", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			reached := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				w.WriteHeader(http.StatusOK)
			})
			CORS(tt.origins)(next).ServeHTTP(rec, req)

			got := rec.Header().Get("Access-Control-Allow-Origin")
			match := false
			for _, want := range tt.wantAllow {
				if got == want {
					match = true
				}
			}
			if !match {
				t.Errorf("Allow-Origin = %q, want one of %q", got, tt.wantAllow)
			}
			if rec.Code >= 300 {
				t.Errorf("status = %d, want 2xx", rec.Code)
			}
			if reached == tt.preflight {
				t.Errorf("next handler reached = %v on preflight = %v", reached, tt.preflight)
			}
		})
	}
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"marks.example.com", "*.lan"}, logger.NewNop())(okHandler)

	tests := []struct {
		host string
		want int
	}{
		{"marks.example.com", http.StatusOK},
		{"nas.lan", http.StatusOK},
		{"other.example.com", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = tt.host
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("host %s = %d, want %d", tt.host, rec.Code, tt.want)
		}
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	h := AllowOnlyCIDRS([]string{"192.168.1.0/24", "10.0.0.7"}, false, logger.NewNop())(okHandler)

	tests := []struct {
		addr string
		want int
	}{
		{"192.168.1.42:5555", http.StatusOK},
		{"10.0.0.7:1", http.StatusOK},
		{"10.0.0.8:1", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("addr %s = %d, want %d", tt.addr, rec.Code, tt.want)
		}
	}
}

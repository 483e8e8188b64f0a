package suggest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMeta(t *testing.T) {
	tests := []struct {
		name string
		html string
		want PageMeta
	}{
		{
			name: "open graph wins",
			html: `<html><head><title>Fallback</title>
				<meta property="og:title" content="Reel by diver">
				<meta property="og:description" content="Blue hole">
				<meta name="description" content="plain"></head></html>`,
			want: PageMeta{Title: "Reel by diver", Description: "Blue hole"},
		},
		{
			name: "twitter then title",
			html: `<html><head><title> Page </title>
				<meta name="twitter:description" content="tw desc"></head></html>`,
			want: PageMeta{Title: "Page", Description: "tw desc"},
		},
		{
			name: "nothing",
			html: `<html><body>hi</body></html>`,
			want: PageMeta{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMeta(strings.NewReader(tt.html))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScraperFetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		_, _ = io.WriteString(w, `<title>Camping</title>`)
	}))
	defer srv.Close()

	meta, err := newScraper(time.Second, true).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Camping", meta.Title)
	assert.Equal(t, userAgent, gotUA)
}

func TestScraperFetchStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newScraper(time.Second, true).Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestScraperRefusesSchemes(t *testing.T) {
	for _, raw := range []string{"ftp://example.com/clip", "file:///etc/passwd", "gopher://example.com"} {
		_, err := NewScraper(time.Second).Fetch(context.Background(), raw)
		assert.ErrorIs(t, err, ErrUnsupportedScheme, raw)
	}
}

func TestScraperRefusesPrivateAddresses(t *testing.T) {
	reached := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		_, _ = io.WriteString(w, `<title>internal</title>`)
	}))
	defer srv.Close()

	_, err := NewScraper(time.Second).Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrForbiddenAddress)
	assert.False(t, reached)
}

func TestIsPublic(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"93.184.216.34", true},
		{"2606:4700::1111", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"192.168.0.10", false},
		{"172.16.5.5", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"fd00::1", false},
		{"100.64.0.1", false},
		{"0.0.0.0", false},
		{"::ffff:127.0.0.1", false},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, isPublic(netip.MustParseAddr(tt.addr)))
		})
	}
}

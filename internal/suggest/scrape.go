package suggest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"golang.org/x/net/html"

	"github.com/MrSnakeDoc/reelmark/internal/utils"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// PageMeta is what a link preview would show.
type PageMeta struct {
	Title       string
	Description string
}

func (m PageMeta) empty() bool {
	return m.Title == "" && m.Description == ""
}

// ErrForbiddenAddress is returned when a page (or a redirect) points at a
// loopback, private or link-local address.
var ErrForbiddenAddress = errors.New("refusing to fetch a non-public address")

// ErrUnsupportedScheme is returned for anything but http and https.
var ErrUnsupportedScheme = errors.New("unsupported url scheme")

// Scraper fetches page metadata. Failures are for the caller to ignore.
type Scraper struct {
	client *http.Client
}

// NewScraper returns a scraper with a short client timeout. It only dials
// public addresses.
func NewScraper(timeout time.Duration) *Scraper {
	return newScraper(timeout, false)
}

func newScraper(timeout time.Duration, allowPrivate bool) *Scraper {
	dialer := &net.Dialer{Timeout: timeout}
	if !allowPrivate {
		dialer.Control = publicOnly
	}
	return &Scraper{client: &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
			MaxIdleConns:          10,
			IdleConnTimeout:       30 * time.Second,
		},
	}}
}

// publicOnly runs after name resolution, so it sees the address actually dialed.
func publicOnly(_, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, address)
	}
	if !isPublic(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, ap.Addr())
	}
	return nil
}

var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

func isPublic(a netip.Addr) bool {
	a = a.Unmap()
	return a.IsValid() &&
		a.IsGlobalUnicast() &&
		!a.IsPrivate() &&
		!a.IsLoopback() &&
		!a.IsLinkLocalUnicast() &&
		!sharedAddressSpace.Contains(a)
}

// Fetch reads the first 128 KiB of rawURL and extracts og/twitter/title tags.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (PageMeta, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return PageMeta{}, fmt.Errorf("failed to parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return PageMeta{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return PageMeta{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return PageMeta{}, fmt.Errorf("fetch failed: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return PageMeta{}, fmt.Errorf("page returned %s", resp.Status)
	}
	return parseMeta(io.LimitReader(resp.Body, 128<<10))
}

func parseMeta(r io.Reader) (PageMeta, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return PageMeta{}, fmt.Errorf("failed to parse html: %w", err)
	}

	var title, desc, ogTitle, ogDesc string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && title == "" {
					title = n.FirstChild.Data
				}
			case "meta":
				key, content := metaAttrs(n)
				switch key {
				case "og:title":
					ogTitle = content
				case "og:description":
					ogDesc = content
				case "twitter:title":
					if ogTitle == "" {
						ogTitle = content
					}
				case "twitter:description":
					if ogDesc == "" {
						ogDesc = content
					}
				case "description":
					desc = content
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return PageMeta{
		Title:       strings.TrimSpace(firstNonEmpty(ogTitle, title)),
		Description: strings.TrimSpace(firstNonEmpty(ogDesc, desc)),
	}, nil
}

// metaAttrs returns the property (or name) of a <meta> tag and its content.
func metaAttrs(n *html.Node) (string, string) {
	var name, property, content string
	for _, a := range n.Attr {
		switch a.Key {
		case "name":
			name = a.Val
		case "property":
			property = a.Val
		case "content":
			content = a.Val
		}
	}
	return firstNonEmpty(property, name), content
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Package metadata loads the title and description of a web page so a
// bookmark has something to show when the user leaves those fields blank.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html/charset"

	"github.com/pkordes/bookmarks/internal/domain"
)

const (
	// maxBodyBytes caps how much of a page is read; <head> is near the top.
	maxBodyBytes = 1 << 20

	// maxTitleRunes matches the website_title column width.
	maxTitleRunes = domain.MaxTitleLength

	userAgent = "Mozilla/5.0 (compatible; bookmarks-metadata/1.0)"
)

// ErrForbiddenAddress is returned when a page resolves to an address the
// loader refuses to connect to.
var ErrForbiddenAddress = errors.New("address not allowed")

// Loader fetches pages over HTTP and extracts their metadata.
type Loader struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Loader.
type Option func(*loaderOptions)

type loaderOptions struct {
	allowPrivate bool
}

// WithPrivateNetworks lets the loader fetch loopback, link-local and private
// addresses. Without it those connections fail with ErrForbiddenAddress.
func WithPrivateNetworks() Option {
	return func(o *loaderOptions) { o.allowPrivate = true }
}

// NewLoader returns a Loader that gives up on a page after timeout.
func NewLoader(timeout time.Duration, opts ...Option) *Loader {
	var o loaderOptions
	for _, opt := range opts {
		opt(&o)
	}

	dialer := &net.Dialer{Timeout: timeout}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !o.allowPrivate {
		dialer.Control = refusePrivate
		// A proxy would be the only address the dialer sees.
		transport.Proxy = nil
	}
	transport.DialContext = dialer.DialContext

	return &Loader{
		client:  &http.Client{Timeout: timeout, Transport: transport},
		timeout: timeout,
	}
}

// refusePrivate runs after name resolution, so it sees the address actually
// being dialled, including every hop of a redirect chain.
func refusePrivate(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !isPublic(ip) {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, ip)
	}
	return nil
}

var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

func isPublic(ip netip.Addr) bool {
	ip = ip.Unmap()
	switch {
	case ip.IsLoopback(), ip.IsPrivate(), ip.IsUnspecified(),
		ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(), ip.IsMulticast():
		return false
	}
	return !sharedAddressSpace.Contains(ip)
}

// Load fetches rawURL and returns its title and description. Titles come
// from <title>, falling back to og:title; descriptions from
// <meta name="description">, falling back to og:description.
// Non-2xx responses are errors.
func (l *Loader) Load(ctx context.Context, rawURL string) (domain.WebsiteMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.WebsiteMetadata{}, fmt.Errorf("metadata.Loader.Load: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := l.client.Do(req)
	if err != nil {
		return domain.WebsiteMetadata{}, fmt.Errorf("metadata.Loader.Load: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.WebsiteMetadata{}, fmt.Errorf("metadata.Loader.Load: unexpected status %d", resp.StatusCode)
	}

	meta, err := parse(io.LimitReader(resp.Body, maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return domain.WebsiteMetadata{}, fmt.Errorf("metadata.Loader.Load: %w", err)
	}
	return meta, nil
}

// Parse extracts metadata from an HTML document. The encoding is taken from
// a byte order mark or <meta charset>, defaulting to UTF-8 or Windows-1252.
func Parse(r io.Reader) (domain.WebsiteMetadata, error) {
	return parse(r, "")
}

// parse decodes r to UTF-8 using contentType as the first hint.
func parse(r io.Reader, contentType string) (domain.WebsiteMetadata, error) {
	utf8Body, err := charset.NewReader(r, contentType)
	if err != nil {
		return domain.WebsiteMetadata{}, fmt.Errorf("decode html: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(utf8Body)
	if err != nil {
		return domain.WebsiteMetadata{}, fmt.Errorf("parse html: %w", err)
	}

	title := doc.Find("head title").First().Text()
	if strings.TrimSpace(title) == "" {
		title = metaContent(doc, `meta[property="og:title"]`)
	}
	description := metaContent(doc, `meta[name="description"]`)
	if strings.TrimSpace(description) == "" {
		description = metaContent(doc, `meta[property="og:description"]`)
	}

	return domain.WebsiteMetadata{
		Title:       truncate(clean(title), maxTitleRunes),
		Description: clean(description),
	}, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return content
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// clean strips any markup a page smuggled into its metadata and collapses
// whitespace. The strict policy escapes entities, which are decoded again
// because templates do their own escaping. The result is always valid UTF-8.
func clean(s string) string {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	s = strings.ToValidUTF8(s, "\uFFFD")
	s = html.UnescapeString(policy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// Nop is a loader that never fetches anything. It is used when metadata
// loading is switched off.
type Nop struct{}

// Load returns empty metadata.
func (Nop) Load(context.Context, string) (domain.WebsiteMetadata, error) {
	return domain.WebsiteMetadata{}, nil
}

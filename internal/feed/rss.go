package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/text/unicode/norm"
)

// DefaultTimeout bounds a single RSS request when no client is supplied.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "skim/dev (+https://github.com/abelbrown/skim)"

// ErrHTTPStatus is wrapped by Fetch when the endpoint answers with a non-2xx status.
var ErrHTTPStatus = errors.New("unexpected HTTP status")

// RSS fetches and parses an RSS or Atom document from a fixed endpoint.
type RSS struct {
	label     string
	url       string
	client    *http.Client
	userAgent string
	limiter   *HostLimiter // optional
}

// Option configures an RSS source.
type Option func(*RSS)

// WithClient sets the HTTP client used for requests.
func WithClient(c *http.Client) Option {
	return func(s *RSS) {
		if c != nil {
			s.client = c
		}
	}
}

// WithTimeout sets the per-request timeout on a fresh HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(s *RSS) {
		if d > 0 {
			s.client = &http.Client{Timeout: d}
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *RSS) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithHostLimiter spaces requests to the same host using a shared limiter.
func WithHostLimiter(l *HostLimiter) Option {
	return func(s *RSS) {
		s.limiter = l
	}
}

// NewRSS creates an RSS source labelled label that reads url.
func NewRSS(label, url string, opts ...Option) *RSS {
	s := &RSS{
		label:     label,
		url:       url,
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Label implements Source.
func (s *RSS) Label() string {
	return s.label
}

// URL returns the configured endpoint.
func (s *RSS) URL() string {
	return s.url
}

// Fetch implements Source. It respects context cancellation.
func (s *RSS) Fetch(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, s.url); err != nil {
			return nil, fmt.Errorf("wait for %s: %w", s.url, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}

	return ParseFeed(resp.Body, s.label)
}

// ParseFeed parses an RSS or Atom document into items labelled label.
// Missing titles and unusable dates degrade per item; only a document that
// cannot be parsed at all is an error.
func ParseFeed(r io.Reader, label string) ([]Item, error) {
	parsed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if entry == nil {
			continue
		}
		items = append(items, convertEntry(entry, label))
	}
	return items, nil
}

// convertEntry maps a gofeed entry onto an Item.
func convertEntry(entry *gofeed.Item, label string) Item {
	id := entry.GUID
	if id == "" {
		id = entry.Link
	}

	title := normalizeText(entry.Title)
	if title == "" {
		title = UntitledPlaceholder
	}

	var published *time.Time
	switch {
	case entry.PublishedParsed != nil:
		published = PublishedAt(*entry.PublishedParsed)
	case entry.UpdatedParsed != nil:
		published = PublishedAt(*entry.UpdatedParsed)
	}

	return Item{
		ID:          id,
		Title:       title,
		Description: entry.Description,
		Link:        entry.Link,
		Published:   published,
		SourceLabel: label,
	}
}

// normalizeText collapses whitespace runs and applies Unicode NFC.
func normalizeText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

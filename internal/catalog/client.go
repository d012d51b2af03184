package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

// ErrFetch marks every failure to obtain or understand a catalog page.
var ErrFetch = errors.New("catalog fetch failed")

// TagSource is the part of the catalog the filter pipeline depends on.
type TagSource interface {
	ListTags(ctx context.Context) ([]string, error)
	ListIDsForTag(ctx context.Context, tag string) ([]string, error)
}

// Ensure Client implements TagSource at compile time.
var _ TagSource = (*Client)(nil)

const (
	defaultBaseURL   = "https://www.clickcritters.com"
	defaultUserAgent = "collfilter/0.1"
	defaultTimeout   = 15 * time.Second
	defaultRate      = 2.0
	maxPageBytes     = 8 << 20

	guidePath   = "/adoptable_guide.php"
	comparePath = "/compare_collections.php"
)

// Options configure a Client.
type Options struct {
	BaseURL           string
	Cookie            string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client reads the collection site's guide and comparison pages.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	cookie    string
}

// NewClient builds a Client from opts, filling in defaults.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRate
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		baseURL:   base,
		http:      httpClient,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		userAgent: userAgent,
		cookie:    strings.TrimSpace(opts.Cookie),
	}, nil
}

// BaseURL returns the site root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListTags returns every tag name linked from the guide index, in page order.
func (c *Client) ListTags(ctx context.Context) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: client is nil", ErrFetch)
	}
	rel := &url.URL{Path: guidePath}
	doc, pageURL, err := c.fetchHTML(ctx, rel)
	if err != nil {
		return nil, err
	}
	tags := TagNames(doc, pageURL)
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: no tags found on %s", ErrFetch, rel)
	}
	return tags, nil
}

// ListIDsForTag returns the ids of every item in tag, in page order. A tag
// without members yields an empty slice, not an error.
func (c *Client) ListIDsForTag(ctx context.Context, tag string) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: client is nil", ErrFetch)
	}
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, fmt.Errorf("%w: tag required", ErrFetch)
	}
	rel := &url.URL{Path: guidePath, RawQuery: url.Values{"tag": {tag}}.Encode()}
	doc, pageURL, err := c.fetchHTML(ctx, rel)
	if err != nil {
		return nil, err
	}
	return ItemIDs(doc, pageURL), nil
}

// FetchComparePage downloads the comparison page against another account.
func (c *Client) FetchComparePage(ctx context.Context, compareTo string) (*html.Node, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: client is nil", ErrFetch)
	}
	compareTo = strings.TrimSpace(compareTo)
	if compareTo == "" {
		return nil, fmt.Errorf("%w: compare_to required", ErrFetch)
	}
	rel := &url.URL{Path: comparePath, RawQuery: url.Values{"compareto": {compareTo}}.Encode()}
	doc, _, err := c.fetchHTML(ctx, rel)
	return doc, err
}

func (c *Client) fetchHTML(ctx context.Context, rel *url.URL) (*html.Node, *url.URL, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("%w: wait for rate limiter: %w", ErrFetch, err)
	}

	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: create request: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", c.userAgent)
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: execute request: %w", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, nil, fmt.Errorf("%w: %s returned status %d", ErrFetch, rel.String(), resp.StatusCode)
	}
	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: parse %s: %w", ErrFetch, rel.String(), err)
	}
	return doc, reqURL, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base_url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

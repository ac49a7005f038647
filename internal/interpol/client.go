// Package interpol is a client for the public red notice web service.
package interpol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pders01/redlist/internal/config"
	"github.com/pders01/redlist/internal/debuglog"
	"github.com/pders01/redlist/internal/notice"
)

const (
	redNoticesPath = "/notices/v1/red"
	maxBodySize    = 8 << 20
)

// ErrEmptyQuery is returned when a search has no forename.
var ErrEmptyQuery = errors.New("empty search query")

// HTTPError reports a non-2xx response.
type HTTPError struct {
	StatusCode int
	URL        string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s (%s)", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// Query selects a page of red notices.
type Query struct {
	Forename      string
	Page          int
	ResultPerPage int
}

// Values encodes the query; zero Page and ResultPerPage are left to the
// service defaults.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("forename", q.Forename)
	if q.ResultPerPage > 0 {
		v.Set("resultPerPage", strconv.Itoa(q.ResultPerPage))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	return v
}

type Client struct {
	base          *url.URL
	client        *http.Client
	userAgent     string
	resultPerPage int
	maxRetries    int
	retryDelay    time.Duration
}

func NewClient(cfg *config.Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.API.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https, got %q", cfg.API.BaseURL)
	}

	return &Client{
		base: base,
		client: &http.Client{
			Timeout: cfg.API.HTTPTimeout,
		},
		userAgent:     cfg.API.UserAgent,
		resultPerPage: cfg.API.ResultPerPage,
		maxRetries:    cfg.API.MaxRetries,
		retryDelay:    time.Second,
	}, nil
}

// SearchURL returns the URL SearchRed requests for q.
func (c *Client) SearchURL(q Query) string {
	if q.ResultPerPage <= 0 {
		q.ResultPerPage = c.resultPerPage
	}
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + redNoticesPath
	u.RawQuery = q.Values().Encode()
	return u.String()
}

// SearchRed fetches one page of red notices matching the forename.
func (c *Client) SearchRed(ctx context.Context, q Query) (*notice.Page, error) {
	q.Forename = strings.TrimSpace(q.Forename)
	if q.Forename == "" {
		return nil, ErrEmptyQuery
	}

	var page notice.Page
	if err := c.getJSON(ctx, c.SearchURL(q), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Detail fetches the record behind a notice's self link.
func (c *Client) Detail(ctx context.Context, href string) (*notice.Detail, error) {
	u, err := c.resolve(href)
	if err != nil {
		return nil, err
	}
	var d notice.Detail
	if err := c.getJSON(ctx, u, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Images fetches the picture list behind a notice's images link.
func (c *Client) Images(ctx context.Context, href string) ([]notice.Image, error) {
	u, err := c.resolve(href)
	if err != nil {
		return nil, err
	}
	var p notice.ImagePage
	if err := c.getJSON(ctx, u, &p); err != nil {
		return nil, err
	}
	return p.Embedded.Images, nil
}

// Profile fetches detail and images of n concurrently. A notice without
// an images link yields no images and no error.
func (c *Client) Profile(ctx context.Context, n *notice.Notice) (*notice.Detail, []notice.Image, error) {
	if n.SelfURL() == "" {
		return nil, nil, fmt.Errorf("notice %s has no detail link", n.EntityID)
	}

	var (
		detail *notice.Detail
		images []notice.Image
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := c.Detail(ctx, n.SelfURL())
		if err != nil {
			return fmt.Errorf("fetching detail: %w", err)
		}
		detail = d
		return nil
	})
	if href := n.ImagesURL(); href != "" {
		g.Go(func() error {
			imgs, err := c.Images(ctx, href)
			if err != nil {
				return fmt.Errorf("fetching images: %w", err)
			}
			images = imgs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return detail, images, nil
}

func (c *Client) resolve(href string) (string, error) {
	if strings.TrimSpace(href) == "" {
		return "", fmt.Errorf("empty link")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parsing link %q: %w", href, err)
	}
	return c.base.ResolveReference(ref).String(), nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	log := debuglog.WithFields(debuglog.Fields{
		"url":     rawURL,
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).Round(time.Millisecond),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warnf("request failed")
		return &HTTPError{
			StatusCode: resp.StatusCode,
			URL:        rawURL,
			RetryAfter: retryAfter(resp, 0),
		}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		log.Warnf("decoding failed: %v", err)
		return fmt.Errorf("decoding response: %w", err)
	}
	log.Debugf("request ok")
	return nil
}

// do sends req, retrying 429 responses with exponential backoff or the
// server's Retry-After, whichever the response provides.
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := c.client.Do(req.Clone(ctx))
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", req.URL.Redacted(), err)
		}

		if resp.StatusCode != http.StatusTooManyRequests || attempt >= c.maxRetries {
			return resp, nil
		}

		wait := retryAfter(resp, c.retryDelay<<attempt)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		debuglog.Infof("rate limited, retrying in %v (attempt %d/%d)", wait, attempt+1, c.maxRetries)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// retryAfter reads a Retry-After header given in seconds, falling back
// to def when absent or unparseable.
func retryAfter(resp *http.Response, def time.Duration) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

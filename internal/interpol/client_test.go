package interpol

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/redlist/internal/config"
	"github.com/pders01/redlist/internal/notice"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.TestConfig()
	cfg.API.BaseURL = server.URL
	client, err := NewClient(cfg)
	require.NoError(t, err)
	client.retryDelay = time.Millisecond
	return client, server
}

func TestNewClient_RejectsBadBaseURL(t *testing.T) {
	cfg := config.TestConfig()
	cfg.API.BaseURL = "ftp://example.com"
	_, err := NewClient(cfg)
	assert.Error(t, err)
}

func TestClient_SearchRed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notices/v1/red", r.URL.Path)
		assert.Equal(t, "john", r.URL.Query().Get("forename"))
		assert.Equal(t, "200", r.URL.Query().Get("resultPerPage"))
		assert.Equal(t, "redlist-test/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total":1,"_embedded":{"notices":[{"forename":"JOHN","name":"DOE","entity_id":"2019/1","date_of_birth":"1980/01/02","nationalities":["US"],"_links":{"self":{"href":"/notices/v1/red/2019-1"}}}]}}`)
	})

	page, err := client.SearchRed(context.Background(), Query{Forename: " john "})
	require.NoError(t, err)
	require.Len(t, page.Notices(), 1)
	assert.Equal(t, "2019/1", page.Notices()[0].EntityID)
	assert.Equal(t, "John Doe", page.Notices()[0].DisplayName())
}

func TestClient_SearchRed_EmptyResult(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"_embedded":{"notices":[]}}`)
	})

	page, err := client.SearchRed(context.Background(), Query{Forename: "zz"})
	require.NoError(t, err)
	assert.Empty(t, page.Notices())
}

func TestClient_SearchRed_EmptyQuery(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := client.SearchRed(context.Background(), Query{Forename: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestClient_SearchURL_EncodesQuery(t *testing.T) {
	client, server := newTestClient(t, func(http.ResponseWriter, *http.Request) {})

	got := client.SearchURL(Query{Forename: "jean luc&x=1", Page: 2, ResultPerPage: 20})
	assert.Equal(t, server.URL+"/notices/v1/red?forename=jean+luc%26x%3D1&page=2&resultPerPage=20", got)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			check: func(t *testing.T, err error) {
				var httpErr *HTTPError
				require.True(t, errors.As(err, &httpErr))
				assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
			},
		},
		{
			name: "forbidden",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
			check: func(t *testing.T, err error) {
				var httpErr *HTTPError
				require.True(t, errors.As(err, &httpErr))
				assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
				assert.Contains(t, httpErr.Error(), "403")
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"_embedded":`)
			},
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "decoding response")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, tt.handler)
			_, err := client.SearchRed(context.Background(), Query{Forename: "john"})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClient_RetriesRateLimit(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"_embedded":{"notices":[]}}`)
	})
	client.maxRetries = 2

	_, err := client.SearchRed(context.Background(), Query{Forename: "john"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_RateLimitExhausted(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	client.maxRetries = 1

	_, err := client.SearchRed(context.Background(), Query{Forename: "john"})

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := client.SearchRed(ctx, Query{Forename: "john"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{"seconds", "120", 120 * time.Second},
		{"invalid", "soon", 5 * time.Second},
		{"missing", "", 5 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tt.header != "" {
				resp.Header.Set("Retry-After", tt.header)
			}
			assert.Equal(t, tt.want, retryAfter(resp, 5*time.Second))
		})
	}
}

func TestClient_Profile(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/notices/v1/red/2019-1":
			fmt.Fprint(w, `{"entity_id":"2019/1","forename":"JOHN","name":"DOE","sex_id":"M","height":1.8,
				"arrest_warrants":[{"charge":"Fraud","issuing_country_id":"US"}]}`)
		case "/notices/v1/red/2019-1/images":
			fmt.Fprint(w, `{"_embedded":{"images":[{"picture_id":"61","_links":{"self":{"href":"/notices/v1/red/2019-1/images/61"}}}]}}`)
		default:
			http.NotFound(w, r)
		}
	})

	n := &notice.Notice{
		EntityID: "2019/1",
		Links: notice.Links{
			Self:   &notice.Link{Href: "/notices/v1/red/2019-1"},
			Images: &notice.Link{Href: "/notices/v1/red/2019-1/images"},
		},
	}

	detail, images, err := client.Profile(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, "M", detail.SexID)
	require.Len(t, detail.ArrestWarrants, 1)
	assert.Equal(t, "Fraud", detail.ArrestWarrants[0].Charge)
	require.Len(t, images, 1)
	assert.Equal(t, "61", images[0].PictureID)
	assert.Equal(t, "/notices/v1/red/2019-1/images/61", images[0].URL())
}

func TestClient_Profile_WithoutImages(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"entity_id":"2020/1"}`)
	})

	n := &notice.Notice{EntityID: "2020/1", Links: notice.Links{Self: &notice.Link{Href: "/notices/v1/red/2020-1"}}}
	detail, images, err := client.Profile(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, "2020/1", detail.EntityID)
	assert.Empty(t, images)
}

func TestClient_Profile_PropagatesFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/detail" {
			fmt.Fprint(w, `{"entity_id":"x"}`)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})

	n := &notice.Notice{Links: notice.Links{
		Self:   &notice.Link{Href: "/detail"},
		Images: &notice.Link{Href: "/images"},
	}}
	_, _, err := client.Profile(context.Background(), n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching images")

	_, _, err = client.Profile(context.Background(), &notice.Notice{EntityID: "none"})
	assert.Error(t, err)
}

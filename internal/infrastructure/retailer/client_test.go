package retailer

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricescout/backend/internal/domain"
)

func newTestClient(attempts int) *Client {
	c := NewClient(ClientConfig{
		RequestTimeout: 5 * time.Second,
		MaxAttempts:    attempts,
		UserAgents:     []string{"test-agent"},
	})
	c.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return c
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(ClientConfig{})

	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.Equal(t, 3, client.maxAttempts)
	assert.NotEmpty(t, client.userAgents)
	assert.False(t, client.debug)

	client.SetDebug(true)
	assert.True(t, client.debug)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.expected.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

func TestClient_FetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Contains(t, r.Header.Get("Accept"), "text/html")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<p>ok</p>"))
	}))
	defer server.Close()

	body, err := newTestClient(3).Fetch(context.Background(), "shop", server.URL)
	require.NoError(t, err)
	assert.Equal(t, "<p>ok</p>", string(body))
}

func TestClient_FetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("third time lucky"))
	}))
	defer server.Close()

	body, err := newTestClient(3).Fetch(context.Background(), "shop", server.URL)
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_FetchGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(3).Fetch(context.Background(), "shop", server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRetailerRequest))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_FetchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(3).Fetch(context.Background(), "shop", server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_FetchCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(3).Fetch(ctx, "shop", server.URL)
	assert.Error(t, err)
}

func TestClient_FetchDecodesContentEncoding(t *testing.T) {
	const page = "<html><body>Galaxy S24</body></html>"

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	gw.Write([]byte(page))
	gw.Close()

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zs := enc.EncodeAll([]byte(page), nil)
	enc.Close()

	tests := []struct {
		encoding string
		payload  []byte
	}{
		{"gzip", gz.Bytes()},
		{"zstd", zs},
	}

	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("Content-Encoding", tt.encoding)
				w.Write(tt.payload)
			}))
			defer server.Close()

			body, err := newTestClient(1).Fetch(context.Background(), "shop", server.URL)
			require.NoError(t, err)
			assert.Equal(t, page, string(body))
		})
	}
}

func TestClient_FetchConvertsCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "£99" in Latin-1
		w.Write([]byte{0xA3, '9', '9'})
	}))
	defer server.Close()

	body, err := newTestClient(1).Fetch(context.Background(), "shop", server.URL)
	require.NoError(t, err)
	assert.Equal(t, "£99", string(body))
}

func TestClient_LimiterPerSite(t *testing.T) {
	client := NewClient(ClientConfig{RequestsPerSecond: 1, Burst: 2})

	a := client.limiterFor("amazon")
	assert.Same(t, a, client.limiterFor("amazon"))
	assert.NotSame(t, a, client.limiterFor("ebay"))
	assert.Equal(t, 2, a.Burst())
}

package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := OpenCache("", time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestFetch(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.UserAgent()
		w.Write([]byte("<html>catalog</html>"))
	}))
	defer server.Close()

	client := NewClient(Options{UserAgent: "test-agent"})
	page, err := client.Fetch(context.Background(), server.URL+"/list/")
	require.NoError(t, err)
	require.Equal(t, "<html>catalog</html>", string(page))
	require.Equal(t, "test-agent", userAgent)
}

func TestFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := NewClient(Options{})
	_, err := client.Fetch(context.Background(), server.URL+"/course/missing")
	require.ErrorContains(t, err, "404")
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(Options{RetryCount: 3})
	client.http.SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(time.Millisecond)

	page, err := client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, "ok", string(page))
	require.EqualValues(t, 3, requests.Load())
}

func TestFetchUsesCache(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte("cached page"))
	}))
	defer server.Close()

	client := NewClient(Options{Cache: openTestCache(t)})
	for i := 0; i < 3; i++ {
		page, err := client.Fetch(context.Background(), server.URL+"/course/?crse=CSCI134")
		require.NoError(t, err)
		require.Equal(t, "cached page", string(page))
	}
	require.EqualValues(t, 1, requests.Load())
}

func TestFetchRespectsCancellation(t *testing.T) {
	client := NewClient(Options{RequestsPerSecond: 0.001})
	// The first token is available immediately; the second wait outlasts the context.
	client.limiter.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := client.Fetch(ctx, "http://127.0.0.1:0/")
	require.Error(t, err)
}

func TestCacheNormalizesKeys(t *testing.T) {
	ctx := context.Background()
	cache := openTestCache(t)

	require.NoError(t, cache.Set(ctx, "http://Catalog.Example.edu/list/?strm=1193&dept=CSCI#top", []byte("page")))

	page, err := cache.Get(ctx, "http://catalog.example.edu/list/?dept=CSCI&strm=1193")
	require.NoError(t, err)
	require.Equal(t, "page", string(page))

	_, err = cache.Get(ctx, "http://catalog.example.edu/list/?strm=1201")
	require.ErrorIs(t, err, ErrNotCached)
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marco/movieFinder/internal/catalog/cache"
)

func moviesJSON(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf(`{"id":%d,"title":"Movie %d","vote_average":7.5,"poster_path":"/p%d.jpg","release_date":"2020-01-0%d","original_language":"en"}`, i+1, i+1, i+1, i%9+1)
	}
	return `{"page":1,"results":[` + strings.Join(parts, ",") + `],"total_pages":1,"total_results":` + fmt.Sprint(n) + `}`
}

func TestClient_FetchMovies_Discover(t *testing.T) {
	var gotPath, gotQuery, gotAuth, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		fmt.Fprint(w, moviesJSON(20))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	movies, err := c.FetchMovies(context.Background(), "")

	require.NoError(t, err)
	assert.Len(t, movies, 20)
	assert.Equal(t, "/discover/movie", gotPath)
	assert.Equal(t, "sort_by=popularity.desc", gotQuery)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, 1, movies[0].ID)
	assert.Equal(t, "/p1.jpg", movies[0].PosterPath)
}

func TestClient_FetchMovies_Search(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("query")
		fmt.Fprint(w, moviesJSON(2))
	}))
	defer srv.Close()

	movies, err := NewClient(srv.URL, "k").FetchMovies(context.Background(), "batman")

	require.NoError(t, err)
	assert.Len(t, movies, 2)
	assert.Equal(t, "/search/movie", gotPath)
	assert.Equal(t, "batman", gotQuery)
}

func TestClient_FetchMovies_Failures(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
		status  int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			status: http.StatusInternalServerError,
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "bad key", http.StatusUnauthorized)
			},
			status: http.StatusUnauthorized,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"results": [`)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			movies, err := NewClient(srv.URL, "k").FetchMovies(context.Background(), "x")

			require.Error(t, err)
			assert.Nil(t, movies)
			assert.True(t, errors.Is(err, ErrRequestFailed))

			var statusErr *StatusError
			if tc.status != 0 {
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, tc.status, statusErr.Code)
			} else {
				assert.False(t, errors.As(err, &statusErr))
			}
		})
	}
}

func TestClient_FetchMovies_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "k").FetchMovies(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequestFailed))
}

func TestClient_FetchMovies_LogicalFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Response":"False","Error":"no results"}`)
	}))
	defer srv.Close()

	movies, err := NewClient(srv.URL, "k").FetchMovies(context.Background(), "zzzz")

	require.Error(t, err)
	assert.Nil(t, movies)
	var logical *LogicalFailureError
	require.True(t, errors.As(err, &logical))
	assert.Equal(t, "no results", logical.Message)
	assert.False(t, errors.Is(err, ErrRequestFailed))
}

func TestClient_FetchMovies_MissingResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"page":1}`)
	}))
	defer srv.Close()

	movies, err := NewClient(srv.URL, "k").FetchMovies(context.Background(), "")

	require.NoError(t, err)
	assert.NotNil(t, movies)
	assert.Empty(t, movies)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, moviesJSON(1))
	}))
	defer srv.Close()

	var logged int
	c := NewClientWithConfig(ClientConfig{
		BaseURL:        srv.URL,
		APIKey:         "k",
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		RetryLogFunc: func(attempt, maxAttempts int, backoff time.Duration, err error) {
			logged++
		},
	})

	movies, err := c.FetchMovies(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, movies, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, 2, logged)
}

func TestClient_UsesCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, moviesJSON(3))
	}))
	defer srv.Close()

	mem, err := cache.NewMemoryCache(16)
	require.NoError(t, err)

	c := NewClientWithConfig(ClientConfig{BaseURL: srv.URL, APIKey: "k", Cache: mem, CacheTTL: time.Minute})

	first, err := c.FetchMovies(context.Background(), "batman")
	require.NoError(t, err)
	second, err := c.FetchMovies(context.Background(), "batman")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	_, err = c.FetchMovies(context.Background(), "superman")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_DoesNotCacheLogicalFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `{"Response":"False","Error":"no results"}`)
	}))
	defer srv.Close()

	mem, err := cache.NewMemoryCache(16)
	require.NoError(t, err)
	c := NewClientWithConfig(ClientConfig{BaseURL: srv.URL, APIKey: "k", Cache: mem})

	_, err = c.FetchMovies(context.Background(), "x")
	require.Error(t, err)
	_, err = c.FetchMovies(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_Reconfigure(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, moviesJSON(1))
	}))
	defer srv.Close()

	c := NewClient("http://127.0.0.1:0", "old")
	c.Reconfigure(srv.URL, "new")

	_, err := c.FetchMovies(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer new", gotAuth)
}

type brokenCache struct {
	entries map[string][]byte
}

func (b *brokenCache) Get(key string) ([]byte, bool) {
	data, ok := b.entries[key]
	return data, ok
}

func (b *brokenCache) Set(string, []byte, time.Duration) error {
	return errors.New("disk full")
}

func (b *brokenCache) Clear() error { return nil }
func (b *brokenCache) Close() error { return nil }

type cacheEvent struct {
	op  string
	hit bool
	err error
}

func TestClient_ReportsCacheErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, moviesJSON(2))
	}))
	defer srv.Close()

	broken := &brokenCache{entries: map[string][]byte{}}
	var events []cacheEvent
	c := NewClientWithConfig(ClientConfig{
		BaseURL: srv.URL,
		APIKey:  "k",
		Cache:   broken,
		CacheLogFunc: func(op, key string, hit bool, err error) {
			events = append(events, cacheEvent{op: op, hit: hit, err: err})
		},
	})

	movies, err := c.FetchMovies(context.Background(), "alien")
	require.NoError(t, err, "a failing cache must not fail the request")
	assert.Len(t, movies, 2)

	require.Len(t, events, 2)
	assert.Equal(t, cacheEvent{op: "get"}, events[0])
	assert.Equal(t, "set", events[1].op)
	assert.False(t, events[1].hit)
	assert.EqualError(t, events[1].err, "disk full")
}

func TestClient_CorruptCacheEntryIsMiss(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, moviesJSON(1))
	}))
	defer srv.Close()

	key := EndpointFor("alien").URL(srv.URL)
	broken := &brokenCache{entries: map[string][]byte{key: []byte("{not json")}}
	var getErr error
	c := NewClientWithConfig(ClientConfig{
		BaseURL: srv.URL,
		APIKey:  "k",
		Cache:   broken,
		CacheLogFunc: func(op, key string, hit bool, err error) {
			if op == "get" {
				getErr = err
			}
		},
	})

	movies, err := c.FetchMovies(context.Background(), "alien")
	require.NoError(t, err)
	assert.Len(t, movies, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.ErrorContains(t, getErr, "corrupt cache entry")
}

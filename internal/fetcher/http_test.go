package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"Process_Insights/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(t *testing.T, server *httptest.Server, timeout time.Duration) *HTTPFetcher {
	t.Helper()
	f, err := newHTTPFetcher(server.URL, timeout)
	require.NoError(t, err)
	return f
}

func TestHTTPFetcher_Fetch_Success(t *testing.T) {
	payload := `[{"label":"Yield","value":0.82,"unit":"ratio","trend":1.1}]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/metrics", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	body, err := newTestFetcher(t, server, 5*time.Second).Fetch(context.Background(), "/metrics")

	require.NoError(t, err)
	assert.Equal(t, payload, string(body))
}

func TestHTTPFetcher_Fetch_KeepsBasePath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/processes", r.URL.Path)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	f, err := newHTTPFetcher(server.URL+"/v1/", 5*time.Second)
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), "processes")
	require.NoError(t, err)
}

func TestHTTPFetcher_Fetch_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestFetcher(t, server, 5*time.Second).Fetch(context.Background(), "/history")

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDatasetNotFound)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.HTTPStatus())
}

func TestHTTPFetcher_Fetch_UnexpectedStatusCode(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
	}{
		{"Internal Server Error", http.StatusInternalServerError},
		{"Bad Gateway", http.StatusBadGateway},
		{"Service Unavailable", http.StatusServiceUnavailable},
		{"Forbidden", http.StatusForbidden},
		{"Too Many Requests", http.StatusTooManyRequests},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
			}))
			defer server.Close()

			_, err := newTestFetcher(t, server, 5*time.Second).Fetch(context.Background(), "/processes")

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tc.statusCode, statusErr.StatusCode)
			assert.NotErrorIs(t, err, models.ErrDatasetNotFound)
			assert.Contains(t, err.Error(), "unexpected HTTP status")
		})
	}
}

func TestHTTPFetcher_Fetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := newTestFetcher(t, server, 50*time.Millisecond).Fetch(context.Background(), "/processes")

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrFetchTimeout)
}

func TestHTTPFetcher_Fetch_ContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestFetcher(t, server, 5*time.Second).Fetch(ctx, "/processes")

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrFetchTimeout)
}

func TestHTTPFetcher_Fetch_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher(t, server, 5*time.Second).Fetch(ctx, "/processes")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, models.ErrFetchTimeout)
}

func TestHTTPFetcher_Fetch_BodySizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", maxBodySize+1)))
	}))
	defer server.Close()

	_, err := newTestFetcher(t, server, 5*time.Second).Fetch(context.Background(), "/history")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "payload too large")
}

func TestHTTPFetcher_Fetch_Redirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"moved":true}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	body, err := newTestFetcher(t, server, 5*time.Second).Fetch(context.Background(), "/old")

	require.NoError(t, err)
	assert.JSONEq(t, `{"moved":true}`, string(body))
}

func TestHTTPFetcher_Fetch_TooManyRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path, http.StatusFound)
	}))
	defer server.Close()

	_, err := newTestFetcher(t, server, 5*time.Second).Fetch(context.Background(), "/loop")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many redirects")
}

func TestHTTPFetcher_Fetch_MultipleRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	defer server.Close()

	f := newTestFetcher(t, server, 5*time.Second)
	paths := []string{"/processes", "/metrics", "/history"}

	var wg sync.WaitGroup
	for _, path := range paths {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			body, err := f.Fetch(context.Background(), p)
			assert.NoError(t, err)
			assert.Equal(t, p, string(body))
		}(path)
	}
	wg.Wait()
}

func TestNewHTTPFetcher_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"http", "http://localhost:9000", false},
		{"https with path", "https://api.example.com/v1", false},
		{"missing scheme", "api.example.com", true},
		{"unsupported scheme", "ftp://api.example.com", true},
		{"missing host", "http://", true},
		{"unparseable", "http://[::1", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := NewHTTPFetcher(tc.baseURL, time.Second)
			if tc.wantErr {
				assert.Error(t, err)
				assert.Nil(t, f)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, &HTTPFetcher{}, f)
		})
	}
}

func TestCheckRedirect(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.NoError(t, checkRedirect(req, make([]*http.Request, maxRedirects-1)))
	assert.Error(t, checkRedirect(req, make([]*http.Request, maxRedirects)))
}

type errorReader struct{}

func (errorReader) Read(p []byte) (int, error) {
	return 0, errors.New("read error")
}

func TestReadBodyWithLimit(t *testing.T) {
	data, err := readBodyWithLimit(strings.NewReader("abc"), 3)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	_, err = readBodyWithLimit(strings.NewReader("abcd"), 3)
	assert.Error(t, err)

	_, err = readBodyWithLimit(errorReader{}, 3)
	assert.EqualError(t, err, "read error")
}

func TestStatusError(t *testing.T) {
	err := &StatusError{StatusCode: 503, URL: "http://upstream/metrics"}

	assert.Equal(t, 503, err.HTTPStatus())
	assert.Equal(t, "unexpected HTTP status 503 from http://upstream/metrics", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}

func BenchmarkHTTPFetcher_Fetch(b *testing.B) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	f, _ := newHTTPFetcher(server.URL, 5*time.Second)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = f.Fetch(ctx, "/processes")
	}
}

package hub

import (
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/test/model/resolve/main/tokenizer.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			requests.Add(1)
		}
		_, _ = w.Write([]byte(`{"model":{"type":"BPE","vocab":{}}}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestDownloadFile(t *testing.T) {
	var requests atomic.Int32
	server := newTestServer(t, &requests)

	repo := New("test/model").
		WithEndpoint(server.URL).
		WithCacheDir(t.TempDir())

	path, err := repo.DownloadFile("tokenizer.json")
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"BPE"`)
	assert.Equal(t, int32(1), requests.Load())

	// Second call is served from the cache.
	again, err := repo.DownloadFile("tokenizer.json")
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Equal(t, int32(1), requests.Load())
}

func TestHasFile(t *testing.T) {
	var requests atomic.Int32
	server := newTestServer(t, &requests)

	repo := New("test/model").
		WithEndpoint(server.URL).
		WithCacheDir(t.TempDir())

	assert.True(t, repo.HasFile("tokenizer.json"))
	assert.False(t, repo.HasFile("no-such-file.bin"))
}

func TestDownloadFileAuthHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(server.Close)

	repo := New("test/model").
		WithEndpoint(server.URL).
		WithCacheDir(t.TempDir()).
		WithAuth("secret-token")

	_, err := repo.DownloadFile("tokenizer.json")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestDownloadFileNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	repo := New("test/model").
		WithEndpoint(server.URL).
		WithCacheDir(t.TempDir())

	_, err := repo.DownloadFile("missing.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

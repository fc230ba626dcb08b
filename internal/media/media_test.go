package media

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImagePrompt(t *testing.T) {
	assert.Equal(t,
		"A clear, simple, minimalist educational diagram illustrating the concept of: 'the water cycle'. White background, infographic style, high quality.",
		ImagePrompt("the water cycle"))
	assert.Equal(t, filepath.Join("assets", "s004.png"), AssetPath("assets", "s004"))
}

func newTestReplicate(t *testing.T, h http.Handler) *ReplicateClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewReplicateClient("r8_token", "")
	c.baseURL = srv.URL
	c.pollInterval = time.Millisecond
	return c
}

func TestReplicateGenerate_SyncResult(t *testing.T) {
	c := newTestReplicate(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/stability-ai/stable-diffusion-3/predictions", r.URL.Path)
		assert.Equal(t, "Bearer r8_token", r.Header.Get("Authorization"))
		assert.Equal(t, "wait", r.Header.Get("Prefer"))

		var body struct {
			Input struct {
				Prompt string `json:"prompt"`
			} `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a cat", body.Input.Prompt)

		w.Write([]byte(`{"id": "p1", "status": "succeeded", "output": ["https://cdn/x.png"]}`))
	}))

	url, err := c.Generate(context.Background(), "a cat")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x.png", url)
}

func TestReplicateGenerate_Polls(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("POST /models/stability-ai/stable-diffusion-3/predictions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "p2", "status": "starting", "urls": {"get": "` + srvURL + `/predictions/p2"}}`))
	})
	mux.HandleFunc("GET /predictions/p2", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 3 {
			w.Write([]byte(`{"id": "p2", "status": "processing", "urls": {"get": "` + srvURL + `/predictions/p2"}}`))
			return
		}
		w.Write([]byte(`{"id": "p2", "status": "succeeded", "output": "https://cdn/y.png"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	srvURL = srv.URL

	c := NewReplicateClient("tok", "")
	c.baseURL = srv.URL
	c.pollInterval = time.Millisecond

	url, err := c.Generate(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/y.png", url)
	assert.Equal(t, int32(3), polls.Load())
}

func TestReplicateGenerate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"detail": "bad token"}`},
		{"prediction failed", http.StatusOK, `{"id": "p", "status": "failed", "error": "nsfw"}`},
		{"no output", http.StatusOK, `{"id": "p", "status": "succeeded", "output": []}`},
		{"not json", http.StatusOK, `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestReplicate(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			_, err := c.Generate(context.Background(), "x")
			assert.Error(t, err)
		})
	}
}

func TestHTTPDownloader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Write([]byte("\x89PNG fake"))
		case "/slow.png":
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte("late"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	d := NewHTTPDownloader(50 * time.Millisecond)

	dest := filepath.Join(dir, "nested", "s001.png")
	require.NoError(t, d.Download(context.Background(), srv.URL+"/ok.png", dest))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG fake", string(data))

	missing := filepath.Join(dir, "s002.png")
	assert.Error(t, d.Download(context.Background(), srv.URL+"/nope.png", missing))
	assert.NoFileExists(t, missing)

	slow := filepath.Join(dir, "s003.png")
	assert.Error(t, d.Download(context.Background(), srv.URL+"/slow.png", slow))
	assert.NoFileExists(t, slow)
	assert.NoFileExists(t, slow+".part")
}

func TestDotRenderer(t *testing.T) {
	r := NewDotRenderer("", time.Second)
	assert.Error(t, r.Render(context.Background(), "  ", filepath.Join(t.TempDir(), "x.png")))

	missing := NewDotRenderer("definitely-not-a-dot-binary", time.Second)
	assert.False(t, missing.Available())
	assert.Error(t, missing.Render(context.Background(), "digraph { a -> b }", filepath.Join(t.TempDir(), "x.png")))

	if !r.Available() {
		t.Skip("graphviz not installed")
	}
	dest := filepath.Join(t.TempDir(), "d.png")
	require.NoError(t, r.Render(context.Background(), "digraph { a -> b }", dest))
	assert.FileExists(t, dest)
}

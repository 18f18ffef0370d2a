package hf

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thumbsmith/thumbsmith/internal/config"
)

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c := NewClient(config.Config{
		HFAPIKey:  "test-key",
		HFBaseURL: serverURL,
		HFModel:   "fake/model",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.retryDelay = time.Millisecond
	return c
}

func TestGenerateNotConfigured(t *testing.T) {
	c := NewClient(config.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := c.Generate(context.Background(), "a cat", GenerateOptions{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGenerateSuccess(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	img, err := c.Generate(context.Background(), "a cat", GenerateOptions{Width: 896, Height: 512})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img.Data)
	assert.Equal(t, "896x512", img.Size)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestGenerateDefaultsDimensions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("img"))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	img, err := c.Generate(context.Background(), "a cat", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "1024x1024", img.Size)
}

func TestGenerateRetriesWhileModelLoads(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"estimated_time": 0.001}`))
			return
		}
		w.Write([]byte("img"))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	img, err := c.Generate(context.Background(), "a cat", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), img.Data)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGenerateGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.Generate(context.Background(), "a cat", GenerateOptions{})
	require.Error(t, err)
	assert.Equal(t, int32(maxAttempts), atomic.LoadInt32(&calls))
}

func TestGenerateFailsFastOnOtherStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid prompt"}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.Generate(context.Background(), "a cat", GenerateOptions{})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	// The provider body must not leak into the returned error.
	assert.NotContains(t, err.Error(), "invalid prompt")
}

func TestGenerateHonorsContextDuringWait(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"estimated_time": 30}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Generate(ctx, "a cat", GenerateOptions{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

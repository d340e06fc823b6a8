package gapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConnection_Do(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/projects/test/topics/t:publish", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"hello":"world"}`, string(body))

		_, _ = w.Write([]byte(`{"messageIds":["1"]}`))
	}))
	defer srv.Close()

	conn := NewConnection("pubsub", srv.URL+"/v1/", WithLogger(zap.NewNop()))
	resp, err := conn.Post(context.Background(), "/projects/test/topics/t:publish", map[string]string{"hello": "world"})
	require.NoError(t, err)

	var out struct {
		MessageIDs []string `json:"messageIds"`
	}
	require.NoError(t, resp.Decode(&out))
	assert.Equal(t, []string{"1"}, out.MessageIDs)
}

func TestConnection_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Resource not found (resource=nope).","status":"NOT_FOUND"}}`))
	}))
	defer srv.Close()

	conn := NewConnection("pubsub", srv.URL)
	_, err := conn.Get(context.Background(), "projects/test/topics/nope", nil)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsAlreadyExists(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NOT_FOUND", apiErr.Status)
	assert.Equal(t, "Resource not found (resource=nope).", apiErr.Message)
}

func TestConnection_APIErrorWithoutJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	conn := NewConnection("logging", srv.URL)
	_, err := conn.Delete(context.Background(), "projects/test/logs/syslog")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Code)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
	assert.Contains(t, string(apiErr.Body), "upstream exploded")
}

func TestConnection_GzipRequests(t *testing.T) {
	large := strings.Repeat("x", 4*gzipThreshold)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Content-Encoding"))
		zr, err := gzip.NewReader(r.Body)
		if !assert.NoError(t, err) {
			return
		}
		body, err := io.ReadAll(zr)
		assert.NoError(t, err)
		assert.Contains(t, string(body), large)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	conn := NewConnection("logging", srv.URL, WithGzip(true))
	_, err := conn.Post(context.Background(), "entries:write", map[string]string{"textPayload": large})
	require.NoError(t, err)
}

func TestConnection_SmallBodiesAreNotCompressed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Encoding"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	conn := NewConnection("logging", srv.URL, WithGzip(true))
	_, err := conn.Put(context.Background(), "projects/test/metrics/m", map[string]string{"name": "m"})
	require.NoError(t, err)
}

func TestConnection_RateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	conn := NewConnection("pubsub", srv.URL, WithRateLimit(0.001, 1))
	_, err := conn.Get(context.Background(), "projects/test/topics", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = conn.Get(ctx, "projects/test/topics", nil)
	assert.Error(t, err)
}

func TestResponse_DecodeEmptyBody(t *testing.T) {
	out := map[string]any{"kept": true}
	require.NoError(t, (&Response{}).Decode(&out))
	assert.Equal(t, true, out["kept"])
}

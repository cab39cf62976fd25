package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	httpclient "github.com/cyphera/remote-accounts/internal/client/http"
	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitLogger("test")
}

func fastRetries() *httpclient.RetryConfig {
	cfg := httpclient.DefaultRetryConfig()
	cfg.InitialInterval = time.Millisecond
	cfg.MaxInterval = 5 * time.Millisecond
	return cfg
}

type echo struct {
	Value string `json:"value"`
}

func TestDoJSON(t *testing.T) {
	t.Run("decodes response and sends headers", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/echo", r.URL.Path)
			assert.Equal(t, "v", r.URL.Query().Get("q"))
			assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var in echo
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			_ = json.NewEncoder(w).Encode(echo{Value: in.Value + "!"})
		}))
		defer srv.Close()

		c := httpclient.NewHTTPClient(
			httpclient.WithBaseURL(srv.URL+"/"),
			httpclient.WithDefaultHeader("X-API-Key", "secret"),
		)
		var out echo
		err := c.DoJSON(context.Background(), http.MethodPost, "/api/echo", echo{Value: "hi"}, &out, httpclient.WithQueryParam("q", "v"))
		require.NoError(t, err)
		assert.Equal(t, "hi!", out.Value)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_ = json.NewEncoder(w).Encode(echo{Value: "ok"})
		}))
		defer srv.Close()

		c := httpclient.NewHTTPClient(httpclient.WithBaseURL(srv.URL), httpclient.WithRetryConfig(fastRetries()))
		var out echo
		require.NoError(t, c.DoJSON(context.Background(), http.MethodGet, "/", nil, &out))
		assert.Equal(t, "ok", out.Value)
		assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := httpclient.NewHTTPClient(httpclient.WithBaseURL(srv.URL), httpclient.WithRetryConfig(fastRetries()))
		err := c.DoJSON(context.Background(), http.MethodGet, "/", nil, nil)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadGateway, httpclient.StatusCode(err))
		assert.EqualValues(t, 4, atomic.LoadInt32(&calls))
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":"NotGateway()"}`))
		}))
		defer srv.Close()

		c := httpclient.NewHTTPClient(httpclient.WithBaseURL(srv.URL), httpclient.WithRetryConfig(fastRetries()))
		err := c.DoJSON(context.Background(), http.MethodPost, "/", echo{}, nil)

		var httpErr *httpclient.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnprocessableEntity, httpErr.StatusCode)
		assert.Contains(t, httpErr.Body, "NotGateway()")
		assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	})

	t.Run("retries disabled", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c := httpclient.NewHTTPClient(httpclient.WithBaseURL(srv.URL), httpclient.WithRetryConfig(nil))
		err := c.DoJSON(context.Background(), http.MethodGet, "/", nil, nil)
		assert.Equal(t, http.StatusServiceUnavailable, httpclient.StatusCode(err))
		assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	})
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 0, httpclient.StatusCode(nil))
	assert.Equal(t, 0, httpclient.StatusCode(assert.AnError))
	assert.Equal(t, 404, httpclient.StatusCode(&httpclient.HTTPError{StatusCode: 404}))
}

package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/redb0/slogwire/middlewares"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates UUID when no header present", func(t *testing.T) {
		t.Parallel()

		var captured string
		handler := middlewares.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = middlewares.GetRequestID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.NotEmpty(t, captured)
		_, err := uuid.Parse(captured)
		require.NoError(t, err)
	})

	t.Run("reuses incoming X-Request-ID", func(t *testing.T) {
		t.Parallel()

		var captured string
		handler := middlewares.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = middlewares.GetRequestID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "incoming-id")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, "incoming-id", captured)
	})

	t.Run("falls back to X-Correlation-ID", func(t *testing.T) {
		t.Parallel()

		var captured string
		handler := middlewares.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = middlewares.GetRequestID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", "correlated")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, "correlated", captured)
	})

	t.Run("echoes the ID in the response header", func(t *testing.T) {
		t.Parallel()

		handler := middlewares.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "echo-me")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, "echo-me", rec.Header().Get("X-Request-ID"))
	})

	t.Run("custom generator", func(t *testing.T) {
		t.Parallel()

		var captured string
		handler := middlewares.RequestID(
			middlewares.WithRequestIDGenerator(func() string { return "fixed" }),
		)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = middlewares.GetRequestID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, "fixed", captured)
	})

	t.Run("custom header list", func(t *testing.T) {
		t.Parallel()

		var captured string
		handler := middlewares.RequestID(
			middlewares.WithRequestIDHeaders("X-Trace-ID"),
		)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = middlewares.GetRequestID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Trace-ID", "traced")
		req.Header.Set("X-Request-ID", "ignored")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, "traced", captured)
	})

	t.Run("custom response header", func(t *testing.T) {
		t.Parallel()

		handler := middlewares.RequestID(
			middlewares.WithRequestIDGenerator(func() string { return "rid" }),
			middlewares.WithRequestIDResponseHeader("X-RID"),
		)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, "rid", rec.Header().Get("X-RID"))
		require.Empty(t, rec.Header().Get("X-Request-ID"))
	})
}

func TestGetRequestID(t *testing.T) {
	t.Parallel()

	t.Run("returns empty string outside middleware", func(t *testing.T) {
		t.Parallel()

		require.Empty(t, middlewares.GetRequestID(context.Background()))
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	t.Run("extracts request_id attr from request context", func(t *testing.T) {
		t.Parallel()

		extract := middlewares.RequestIDExtractor()

		var attrOK bool
		var value string
		handler := middlewares.RequestID(
			middlewares.WithRequestIDGenerator(func() string { return "ctx-id" }),
		)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attr, ok := extract(r.Context())
			attrOK = ok
			value = attr.Value.String()
			require.Equal(t, "request_id", attr.Key)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.True(t, attrOK)
		require.Equal(t, "ctx-id", value)
	})

	t.Run("reports no attr for bare context", func(t *testing.T) {
		t.Parallel()

		extract := middlewares.RequestIDExtractor()
		_, ok := extract(context.Background())
		require.False(t, ok)
	})
}

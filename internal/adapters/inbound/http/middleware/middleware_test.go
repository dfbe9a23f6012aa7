package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/architeacher/device-inventory/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/device-inventory/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/attribute"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

type SecurityHeadersTestSuite struct {
	suite.Suite
}

func TestSecurityHeadersTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(SecurityHeadersTestSuite))
}

func (s *SecurityHeadersTestSuite) TestSecurityHeaders() {
	cases := []struct {
		header   string
		expected string
	}{
		{header: "X-Content-Type-Options", expected: "nosniff"},
		{header: "X-Frame-Options", expected: "DENY"},
		{header: "Referrer-Policy", expected: "strict-origin-when-cross-origin"},
		{header: "Content-Security-Policy", expected: "default-src 'none'"},
		{header: "API-Version", expected: "v1"},
	}

	handler := middleware.SecurityHeaders("v1")(okHandler())

	for _, tc := range cases {
		s.Run(tc.header, func() {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			s.Require().Equal(tc.expected, rec.Header().Get(tc.header))
		})
	}
}

func (s *SecurityHeadersTestSuite) TestCORS() {
	cases := []struct {
		name          string
		allowed       []string
		origin        string
		expectAllowed bool
	}{
		{name: "wildcard", allowed: []string{"*"}, origin: "https://example.com", expectAllowed: true},
		{name: "listed origin", allowed: []string{"https://allowed.com"}, origin: "https://allowed.com", expectAllowed: true},
		{name: "unlisted origin", allowed: []string{"https://allowed.com"}, origin: "https://other.com", expectAllowed: false},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			handler := middleware.CORS(tc.allowed)(okHandler())

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", tc.origin)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if tc.expectAllowed {
				s.Require().Equal(tc.origin, rec.Header().Get("Access-Control-Allow-Origin"))
			} else {
				s.Require().Empty(rec.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func (s *SecurityHeadersTestSuite) TestCORS_Preflight() {
	called := false
	handler := middleware.CORS([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/device/v1", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusNoContent, rec.Code)
	s.Require().False(called)
}

func (s *SecurityHeadersTestSuite) TestMaxBodyBytes() {
	var readErr error
	handler := middleware.MaxBodyBytes(4)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	req := httptest.NewRequest(http.MethodPost, "/device/v1", strings.NewReader("0123456789"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var maxErr *http.MaxBytesError
	s.Require().True(errors.As(readErr, &maxErr))
}

type RequestIDTestSuite struct {
	suite.Suite
}

func TestRequestIDTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(RequestIDTestSuite))
}

func (s *RequestIDTestSuite) TestGeneratesNewID() {
	var captured context.Context
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		captured = r.Context()
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	s.Require().NotEmpty(rec.Header().Get(middleware.RequestIDHeader))
	s.Require().Equal(rec.Header().Get(middleware.RequestIDHeader), logger.RequestIDFromContext(captured))
}

func (s *RequestIDTestSuite) TestPropagatesIncomingID() {
	var captured context.Context
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		captured = r.Context()
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	s.Require().Equal("req-123", rec.Header().Get(middleware.RequestIDHeader))
	s.Require().Equal("req-123", logger.RequestIDFromContext(captured))
}

type RecoveryTestSuite struct {
	suite.Suite
}

func TestRecoveryTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(RecoveryTestSuite))
}

func (s *RecoveryTestSuite) TestRecoversPanic() {
	var buf bytes.Buffer
	handler := middleware.Recovery(logger.NewBufferedTestLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/device/v1", nil))

	s.Require().Equal(http.StatusInternalServerError, rec.Code)
	s.Require().JSONEq(`{"message":"Internal server error","status":500}`, rec.Body.String())
	s.Require().Contains(buf.String(), "panic recovered")
	s.Require().Contains(buf.String(), "boom")
}

func (s *RecoveryTestSuite) TestRepanicsOnAbortHandler() {
	handler := middleware.Recovery(logger.NewTestLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	s.Require().PanicsWithValue(http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

type AccessLogTestSuite struct {
	suite.Suite
}

func TestAccessLogTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(AccessLogTestSuite))
}

func (s *AccessLogTestSuite) serve(logHealthChecks bool, path string, status int) []map[string]any {
	var buf bytes.Buffer

	accessLogger := middleware.NewAccessLogger(logger.NewBufferedTestLogger(&buf))
	filter := middleware.NewHealthCheckFilter(logHealthChecks)

	handler := filter.Middleware(accessLogger.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("{}"))
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))

	var entries []map[string]any
	decoder := json.NewDecoder(&buf)
	for decoder.More() {
		entry := map[string]any{}
		s.Require().NoError(decoder.Decode(&entry))
		entries = append(entries, entry)
	}

	return entries
}

func (s *AccessLogTestSuite) TestLogsRequests() {
	cases := []struct {
		name          string
		status        int
		expectedLevel string
	}{
		{name: "success", status: http.StatusOK, expectedLevel: "info"},
		{name: "client error", status: http.StatusNotFound, expectedLevel: "warn"},
		{name: "server error", status: http.StatusInternalServerError, expectedLevel: "error"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			entries := s.serve(false, "/device/v1", tc.status)

			s.Require().Len(entries, 1)
			s.Require().Equal(tc.expectedLevel, entries[0]["level"])
			s.Require().Equal("http", entries[0]["component"])
			s.Require().EqualValues(tc.status, entries[0]["status"])
			s.Require().EqualValues(2, entries[0]["bytes"])
		})
	}
}

func (s *AccessLogTestSuite) TestHealthChecksFiltered() {
	s.Require().Empty(s.serve(false, "/health/live", http.StatusOK))
	s.Require().Empty(s.serve(false, "/health/", http.StatusOK))
	s.Require().Len(s.serve(true, "/health/live", http.StatusOK), 1)
}

type recordedMeasurement struct {
	key   string
	value any
	attrs []attribute.KeyValue
}

type recordingMetricsClient struct {
	mu           sync.Mutex
	measurements []recordedMeasurement
}

func (c *recordingMetricsClient) Inc(_ context.Context, key string, value any, attrs ...attribute.KeyValue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.measurements = append(c.measurements, recordedMeasurement{key: key, value: value, attrs: attrs})
}

func (c *recordingMetricsClient) Handler() http.Handler { return http.NotFoundHandler() }

func (c *recordingMetricsClient) Shutdown(context.Context) error { return nil }

type MetricsTestSuite struct {
	suite.Suite
}

func TestMetricsTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(MetricsTestSuite))
}

func (s *MetricsTestSuite) TestRecordsRoutePattern() {
	client := &recordingMetricsClient{}

	router := chi.NewRouter()
	router.Use(middleware.NewMetricsMiddleware(client).Middleware)
	router.Get("/device/v1/id/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/device/v1/id/abc", nil))

	s.Require().Len(client.measurements, 3)

	total := client.measurements[0]
	s.Require().Equal("http_requests_total", total.key)
	s.Require().Equal(int64(1), total.value)
	s.Require().Contains(total.attrs, attribute.String("http.route", "/device/v1/id/{id}"))
	s.Require().Contains(total.attrs, attribute.String("http.status_code", "404"))
	s.Require().Contains(total.attrs, attribute.String("http.method", http.MethodGet))

	s.Require().Equal("http_request_duration_seconds", client.measurements[1].key)
	s.Require().IsType(float64(0), client.measurements[1].value)
}

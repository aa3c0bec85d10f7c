package apiclient

import (
	"expvar"
	"net/http"
	"time"

	"go.uber.org/zap"
)

var (
	requestsTotal  = expvar.NewInt("requests_total")
	requestsErrors = expvar.NewInt("requests_errors_total")
)

type loggingTransport struct {
	next   http.RoundTripper
	logger *zap.Logger
}

func (t *loggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(r)
	duration := time.Since(start)
	requestsTotal.Add(1)

	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int64("duration_ms", duration.Milliseconds()),
		zap.String("request_id", r.Header.Get("X-Request-ID")),
	}
	if err != nil {
		requestsErrors.Add(1)
		t.logger.Warn("request failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	fields = append(fields, zap.Int("status", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		requestsErrors.Add(1)
		t.logger.Info("request", fields...)
	} else {
		t.logger.Debug("request", fields...)
	}
	return resp, nil
}

package controller

import (
	"net/http"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/adapter/http/middleware"
	"github.com/api-sage/bank-ledger/src/internal/logger"
)

// requestFields identifies a request by its matched route rather than the raw
// path, with the account id pulled out when the route carries one.
func requestFields(r *http.Request) logger.Fields {
	fields := logger.Fields{
		"method":    r.Method,
		"route":     r.Pattern,
		"requestId": middleware.RequestIDFrom(r.Context()),
	}
	if id := r.PathValue("id"); id != "" {
		fields["accountId"] = id
	}
	if r.URL.RawQuery != "" {
		fields["query"] = r.URL.RawQuery
	}
	return fields
}

func logRequest(r *http.Request, payload any) {
	fields := requestFields(r)
	if payload != nil {
		fields["payload"] = logger.SanitizePayload(payload)
	}
	logger.Info("http request", fields)
}

// logResponse logs client rejections at info and Busy at warn; server
// failures are already logged with their cause by logError.
func logResponse(r *http.Request, status int, code string, start time.Time) {
	fields := requestFields(r)
	fields["status"] = status
	fields["durationMs"] = time.Since(start).Milliseconds()
	if code != "" {
		fields["code"] = code
	}

	if status == http.StatusServiceUnavailable {
		logger.Warn("http response", fields)
		return
	}
	logger.Info("http response", fields)
}

func logError(r *http.Request, err error, extra logger.Fields) {
	fields := requestFields(r)
	for k, v := range extra {
		fields[k] = v
	}
	logger.Error("http handler error", err, fields)
}

package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/adapter/http/middleware"
	"github.com/api-sage/bank-ledger/src/internal/commons"
	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
)

var statusByCode = map[domain.ErrorCode]int{
	domain.CodeInsufficientFunds: http.StatusUnprocessableEntity,
	domain.CodeAccountNotFound:   http.StatusNotFound,
	domain.CodeAccountInactive:   http.StatusConflict,
	domain.CodeSameAccount:       http.StatusBadRequest,
	domain.CodeInvalidAmount:     http.StatusBadRequest,
	domain.CodeBusy:              http.StatusServiceUnavailable,
	domain.CodeStorageFailure:    http.StatusInternalServerError,
}

// statusFor maps a service error onto an HTTP status and a client message.
// Storage failures never leak the backend error text.
func statusFor(err error) (int, string) {
	if errors.Is(err, domain.ErrValidation) {
		return http.StatusBadRequest, "validation failed"
	}

	code := domain.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok || code == domain.CodeStorageFailure {
		return http.StatusInternalServerError, "internal server error"
	}
	return status, err.Error()
}

// writeFailure logs err and writes the envelope for it.
func writeFailure[T any](w http.ResponseWriter, r *http.Request, err error, start time.Time) {
	status, message := statusFor(err)
	code := string(domain.CodeOf(err))
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logError(r, err, logger.Fields{"code": code})
	}

	errs := []string(nil)
	if errors.Is(err, domain.ErrValidation) {
		errs = []string{err.Error()}
	}

	response := commons.CodedErrorResponse[T](code, message, errs...)
	respond(w, r, status, response, start)
}

func respond[T any](w http.ResponseWriter, r *http.Request, status int, response commons.Response[T], start time.Time) {
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	response = response.WithRequestID(middleware.RequestIDFrom(r.Context()))
	writeJSON(w, status, response)
	logResponse(r, status, response.Code, start)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func pathAccountID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("account id %q must be a positive integer", raw)
	}
	return id, nil
}

// queryTime parses an optional RFC3339 query parameter; absent means zero.
func queryTime(r *http.Request, key string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be an RFC3339 timestamp", key)
	}
	return parsed.UTC(), nil
}

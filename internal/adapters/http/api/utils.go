package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ActorHeader carries the id of the member making the request.
const ActorHeader = "X-Member-ID"

// IdempotencyHeader makes exchange creation safe to retry.
const IdempotencyHeader = "Idempotency-Key"

const maxBodyBytes = 64 << 10

var validate = validator.New()

type errorResponse struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	ExchangeID string `json:"exchangeId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := http.StatusText(status)
	if err != nil && status < http.StatusInternalServerError {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a size-limited body into v and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return validate.StructCtx(r.Context(), v)
}

// actor returns the requesting member id.
func actor(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(ActorHeader))
	if id == "" {
		return "", ErrMissingActor
	}
	return id, nil
}

// parseLimit reads ?limit=N. Zero means the server default.
func parseLimit(r *http.Request, maxLimit int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("limit must be a positive integer, got %q", raw)
	}
	if n > maxLimit {
		return 0, fmt.Errorf("limit %d exceeds %d", n, maxLimit)
	}
	return n, nil
}

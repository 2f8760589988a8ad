package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kailas-cloud/pilotprefs/internal/domain"
)

// Callable error statuses, as understood by Firebase/Cloud Functions callable clients.
const (
	StatusUnauthenticated   = "UNAUTHENTICATED"
	StatusInvalidArgument   = "INVALID_ARGUMENT"
	StatusNotFound          = "NOT_FOUND"
	StatusResourceExhausted = "RESOURCE_EXHAUSTED"
	StatusInternal          = "INTERNAL"
)

// callableRequest is the request envelope: the payload travels under "data".
type callableRequest[T any] struct {
	Data T `json:"data"`
}

type callableResponse struct {
	Result any `json:"result"`
}

// CallableError is the error body of a callable response.
type CallableError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type callableErrorResponse struct {
	Error CallableError `json:"error"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// errorHandlers are checked in order. ErrInternal comes first: it may wrap another sentinel.
var errorHandlers = []errorHandler{
	sentinelHandler(domain.ErrInternal, http.StatusInternalServerError, StatusInternal),
	sentinelHandler(domain.ErrUnauthenticated, http.StatusUnauthorized, StatusUnauthenticated),
	sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, StatusInvalidArgument),
	sentinelHandler(domain.ErrProfileNotFound, http.StatusNotFound, StatusNotFound),
	sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, StatusResourceExhausted),
}

// decodeCallable reads a {"data": ...} envelope into T.
func decodeCallable[T any](r *http.Request) (T, error) {
	var req callableRequest[T]
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var zero T
		return zero, err
	}
	return req.Data, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeResult(w http.ResponseWriter, result any) {
	writeJSON(w, http.StatusOK, callableResponse{Result: result})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, callableErrorResponse{Error: CallableError{Status: code, Message: message}})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The client sees the sentinel text only, never the wrapped cause.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecscope/internal/db"
	"github.com/kailas-cloud/vecscope/internal/domain"
)

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeRateLimited      ErrorCode = "rate_limited"
	CodeModelNotFound    ErrorCode = "model_not_found"
	CodeDocumentNotFound ErrorCode = "document_not_found"
	CodeIndexNotFound    ErrorCode = "index_not_found"
	CodeBackendError     ErrorCode = "backend_error"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// clientErrors are caused by the request itself; their full text is returned.
var clientErrors = []error{
	domain.ErrInvalidParams,
	domain.ErrEmptyArgument,
	domain.ErrUnknownMethod,
	domain.ErrUnknownScope,
	domain.ErrScopeType,
	domain.ErrTemplateNotFound,
}

func defaultErrorHandlers() []errorHandler {
	handlers := make([]errorHandler, 0, len(clientErrors)+3)
	handlers = append(handlers,
		sentinelHandler(domain.ErrUnknownModel, http.StatusNotFound, CodeModelNotFound),
		sentinelHandler(db.ErrIndexNotFound, http.StatusNotFound, CodeIndexNotFound),
	)
	for _, s := range clientErrors {
		handlers = append(handlers, sentinelHandler(s, http.StatusBadRequest, CodeValidationFailed))
	}
	return append(handlers, backendErrorHandler)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a message for the client without exposing internals.
func safeDomainMessage(err error) string {
	for _, s := range clientErrors {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	for _, s := range []error{domain.ErrUnknownModel, db.ErrIndexNotFound} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// backendErrorHandler reports failed database commands as a bad gateway.
func backendErrorHandler(w http.ResponseWriter, err error, _ string) bool {
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		return false
	}
	writeError(w, http.StatusBadGateway, CodeBackendError, "backend "+dbErr.Op+" failed")
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

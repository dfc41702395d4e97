package errors

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// ErrorHandler converts pipeline errors into RFC 7807 responses and logs
// them with request context.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
	}
}

// HandleError logs err and writes the matching problem response.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)

	render.Render(w, r, problem)
}

// ErrorToProblem maps an error to RFC 7807 problem details. AppError
// classifications map onto fixed problem types; anything unrecognized is an
// internal error.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrTypeSourceNotFound:
			return NewProblemDetails(
				http.StatusNotFound,
				TypeSourceGone,
				"Station Data Not Found",
				appErr.Message,
				r.URL.Path,
			)
		case ErrTypeSchema:
			return NewProblemDetails(
				http.StatusUnprocessableEntity,
				TypeSchema,
				"Unrecognized Workbook Schema",
				appErr.Message,
				r.URL.Path,
			)
		case ErrTypeInvalidInput:
			return NewProblemDetails(
				http.StatusUnprocessableEntity,
				TypeInvalidData,
				"Invalid Measurement Table",
				appErr.Message,
				r.URL.Path,
			)
		case ErrTypeNotFound:
			return NewProblemDetails(
				http.StatusNotFound,
				TypeNotFound,
				"Resource Not Found",
				appErr.Message,
				r.URL.Path,
			)
		case ErrTypeValidation:
			return NewProblemDetails(
				http.StatusBadRequest,
				TypeValidation,
				"Validation Failed",
				appErr.Message,
				r.URL.Path,
			)
		}
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	)
}

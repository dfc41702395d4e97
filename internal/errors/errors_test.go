package errors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewSchemaError("no timestamp column", nil),
			want: "[SCHEMA] no timestamp column",
		},
		{
			name: "with cause",
			err:  NewSourceNotFoundError("workbook missing", fmt.Errorf("stat: no such file")),
			want: "[SOURCE_NOT_FOUND] workbook missing: stat: no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewParsingError("open failed", cause)

	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	require.ErrorAs(t, fmt.Errorf("load: %w", err), &appErr)
	assert.Equal(t, ErrTypeParsing, appErr.Type)
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewSchemaError("bad cell", nil))

	assert.True(t, IsType(err, ErrTypeSchema))
	assert.False(t, IsType(err, ErrTypeSourceNotFound))
	assert.False(t, IsType(errors.New("plain"), ErrTypeSchema))
}

func TestAppError_WithContext(t *testing.T) {
	err := NewSchemaError("bad cell", nil).
		WithContext("column", "Time").
		WithContext("row", 4)

	assert.Equal(t, "Time", err.Context["column"])
	assert.Equal(t, 4, err.Context["row"])
}

func TestErrorHandler_HandleError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewErrorHandler(logger)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "source not found maps to 404",
			err:        NewSourceNotFoundError("workbook for station mvule does not exist", nil),
			wantStatus: http.StatusNotFound,
			wantType:   TypeSourceGone,
		},
		{
			name:       "schema error maps to 422",
			err:        NewSchemaError("no recognized timestamp column", nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeSchema,
		},
		{
			name:       "invalid input maps to 422",
			err:        NewInvalidInputError("column length mismatch", nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeInvalidData,
		},
		{
			name:       "not found maps to 404",
			err:        NewNotFoundError("chart"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "validation maps to 400",
			err:        NewValidationError("station is required"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "unknown error maps to 500",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
		{
			name:       "context cancellation maps to 504",
			err:        context.Canceled,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/data/stations/mvule", nil)
			w := httptest.NewRecorder()

			handler.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/problem+json")
			assert.Contains(t, w.Body.String(), tt.wantType)
		})
	}
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "station gone", "/api/x").
		WithExtension("trace_id", "abc-123")

	data, err := pd.MarshalJSON()
	require.NoError(t, err)

	assert.Contains(t, string(data), `"trace_id":"abc-123"`)
	assert.Contains(t, string(data), `"status":404`)
	assert.Contains(t, string(data), `"instance":"/api/x"`)
}

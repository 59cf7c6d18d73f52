package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("read failed")
	err := NewParsingError("bad radiance row", cause)

	assert.True(t, IsType(err, ErrTypeParsing))
	assert.False(t, IsType(err, ErrTypeStorage))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "bad radiance row")
}

func TestIsTypeOnWrappedError(t *testing.T) {
	inner := NewInsufficientVariationError(1)
	wrapped := fmt.Errorf("regression stage: %w", inner)

	assert.True(t, IsType(wrapped, ErrTypeInsufficientVariation))
}

func TestDuplicateKeyErrorContext(t *testing.T) {
	err := NewDuplicateKeyError("brightness", "17031/2021-02")

	assert.True(t, IsType(err, ErrTypeDuplicateKey))
	assert.Equal(t, "brightness", err.Context["table"])
	assert.Equal(t, "17031/2021-02", err.Context["key"])
}

func handleErr(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	handler.HandleError(rec, httptest.NewRequest(http.MethodGet, "/api/regression", nil), err)
	return rec
}

func TestHandleErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "insufficient variation",
			err:        NewInsufficientVariationError(1),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeRegression,
		},
		{
			name:       "duplicate key",
			err:        NewDuplicateKeyError("returns", "AAPL/2021-01"),
			wantStatus: http.StatusConflict,
			wantType:   TypeDataQuality,
		},
		{
			name:       "not found",
			err:        NewNotFoundError("ticker NOPE"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "validation",
			err:        NewValidationError("bad cluster option"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "unknown errors stay internal",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := handleErr(t, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.EqualValues(t, tt.wantStatus, body["status"])
		})
	}
}

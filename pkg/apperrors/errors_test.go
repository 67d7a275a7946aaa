package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithErrorDoesNotMutatePredefined(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := ErrStorageWriteFailed.WithError(cause)

	assert.Nil(t, ErrStorageWriteFailed.Err)
	assert.Equal(t, cause, wrapped.Err)
	assert.True(t, errors.Is(wrapped, cause))
	assert.True(t, errors.Is(wrapped, ErrStorageWriteFailed))
	assert.False(t, errors.Is(wrapped, ErrInvalidFileType))
}

func TestIsThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("saving: %w", ErrPayloadTooLarge)
	assert.True(t, Is(err, ErrPayloadTooLarge))

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusRequestEntityTooLarge, appErr.HTTPCode)
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"validation", ErrInvalidFileType, http.StatusBadRequest, "Invalid file type"},
		{"no file", ErrNoFileProvided, http.StatusBadRequest, "No file uploaded"},
		{"storage hides cause", ErrStorageWriteFailed.WithError(errors.New("/secret/path: no space left")), http.StatusInternalServerError, "File upload failed"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
		{"too large", ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, "File too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.True(t, c.IsAborted())

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, map[string]string{"error": tt.wantBody}, body)
		})
	}
}

func TestAsFindsWrappedAppError(t *testing.T) {
	err := fmt.Errorf("upload: %w", ErrStorageWriteFailed.WithError(errors.New("disk full")))

	var appErr *AppError
	require.True(t, As(err, &appErr))
	assert.Equal(t, CodeStorageWriteFailed, appErr.Code)

	_, ok := AsAppError(errors.New("plain"))
	assert.False(t, ok)
}

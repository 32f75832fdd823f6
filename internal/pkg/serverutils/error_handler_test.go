package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/pkg/extract"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody ErrorBody
	}{
		{
			name:     "fiber error",
			err:      HTTPError(fiber.StatusBadRequest, "File must have a name"),
			wantCode: 400,
			wantBody: ErrorBody{Error: "HTTP 400", Detail: "File must have a name"},
		},
		{
			name:     "extraction too large",
			err:      &extract.Error{Kind: extract.KindTooLarge, Message: "File size 12.0MB exceeds maximum allowed size of 10MB"},
			wantCode: 413,
			wantBody: ErrorBody{Error: "HTTP 413", Detail: "File size 12.0MB exceeds maximum allowed size of 10MB"},
		},
		{
			name:     "extraction timeout",
			err:      &extract.Error{Kind: extract.KindTimeout, Message: "PDF processing timed out. Please try with a smaller file."},
			wantCode: 408,
			wantBody: ErrorBody{Error: "HTTP 408", Detail: "PDF processing timed out. Please try with a smaller file."},
		},
		{
			name:     "unexpected",
			err:      errors.New("database on fire"),
			wantCode: 500,
			wantBody: InternalErrorResponse(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.NewNopLogger())})
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			raw, _ := io.ReadAll(resp.Body)
			var body ErrorBody
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	type form struct {
		Message string `validate:"max=5"`
	}
	assert.NoError(t, ValidateRequest(form{Message: "short"}))

	err := ValidateRequest(form{Message: "too long"})
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusUnprocessableEntity, fe.Code)
	assert.Equal(t, "message must be at most 5 characters", fe.Message)
}

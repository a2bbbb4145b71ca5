package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faceverify/faceverify/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantLogged  bool
	}{
		{
			name:        "app error keeps status and message",
			err:         domain.ErrNoFaceDetected.WithMessage("No face detected in image 2"),
			wantStatus:  400,
			wantCode:    "NO_FACE_DETECTED",
			wantMessage: "No face detected in image 2",
		},
		{
			name:        "wrapped app error",
			err:         errors.Join(errors.New("context"), domain.ErrModelUnavailable),
			wantStatus:  503,
			wantCode:    "MODEL_UNAVAILABLE",
			wantMessage: "Face model not loaded",
			wantLogged:  true,
		},
		{
			name:        "provider failure hides cause",
			err:         domain.ErrProviderFailure.WithError(errors.New("dial tcp: refused")),
			wantStatus:  502,
			wantCode:    "PROVIDER_ERROR",
			wantMessage: "Face recognition provider failed",
			wantLogged:  true,
		},
		{
			name:        "fiber not found",
			err:         fiber.ErrNotFound,
			wantStatus:  404,
			wantCode:    "NOT_FOUND",
			wantMessage: "Not Found",
		},
		{
			name:        "fiber bad request",
			err:         fiber.NewError(fiber.StatusBadRequest, "malformed multipart form"),
			wantStatus:  400,
			wantCode:    "BAD_REQUEST",
			wantMessage: "malformed multipart form",
		},
		{
			name:        "fiber body too large",
			err:         fiber.ErrRequestEntityTooLarge,
			wantStatus:  413,
			wantCode:    "IMAGE_TOO_LARGE",
			wantMessage: "Request Entity Too Large",
		},
		{
			name:        "unknown error",
			err:         errors.New("boom"),
			wantStatus:  500,
			wantCode:    "INTERNAL_ERROR",
			wantMessage: "An unexpected error occurred",
			wantLogged:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, nil))

			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
			app.Get("/fail", func(c *fiber.Ctx) error {
				return tt.err
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/fail", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body errorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantMessage, body.Error.Message)

			if tt.wantLogged {
				assert.NotEmpty(t, logs.String())
			} else {
				assert.Empty(t, logs.String())
			}
		})
	}
}

func TestRecover(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	app := fiber.New()
	app.Use(Recover(logger))
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("something broke")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.Contains(t, logs.String(), "panic recovered")
	assert.Contains(t, logs.String(), "something broke")
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name      string
		handler   fiber.Handler
		wantLevel string
		wantCode  int
	}{
		{
			name:      "success logs at info",
			handler:   func(c *fiber.Ctx) error { return c.SendString("ok") },
			wantLevel: "level=INFO",
			wantCode:  200,
		},
		{
			name:      "client error logs at warn",
			handler:   func(c *fiber.Ctx) error { return domain.ErrValidationFailed },
			wantLevel: "level=WARN",
			wantCode:  400,
		},
		{
			name:      "server error logs at error",
			handler:   func(c *fiber.Ctx) error { return domain.ErrModelUnavailable },
			wantLevel: "level=ERROR",
			wantCode:  503,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, nil))

			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(discardLogger())})
			app.Use(Logger(logger))
			app.Get("/x", tt.handler)

			resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			out := logs.String()
			assert.Contains(t, out, "http request")
			assert.Contains(t, out, tt.wantLevel)
			assert.Contains(t, out, "path=/x")
		})
	}
}

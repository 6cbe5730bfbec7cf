package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTraceApp() (*fiber.App, *string) {
	m := &Middleware{}
	app := fiber.New()
	app.Use(m.TraceID())

	var seen string
	app.Get("/", func(c *fiber.Ctx) error {
		seen = GetTraceID(c)
		return c.SendStatus(fiber.StatusOK)
	})
	return app, &seen
}

func TestTraceID_GeneratesWhenMissing(t *testing.T) {
	app, seen := newTraceApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	header := resp.Header.Get(TraceIDHeader)
	require.NotEmpty(t, header)
	_, err = uuid.Parse(header)
	assert.NoError(t, err)
	assert.Equal(t, header, *seen)
}

func TestTraceID_PropagatesIncomingHeader(t *testing.T) {
	app, seen := newTraceApp()

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(TraceIDHeader, "trace-from-client")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "trace-from-client", resp.Header.Get(TraceIDHeader))
	assert.Equal(t, "trace-from-client", *seen)
}

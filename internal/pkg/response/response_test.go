package response

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, app *fiber.App, path string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out
}

func TestEnvelopes(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error { return Success(c, "fetched", fiber.Map{"a": 1}, nil) })
	app.Get("/created", func(c *fiber.Ctx) error { return SuccessCreated(c, "made", nil, fiber.Map{"page": 1}) })
	app.Get("/bad", func(c *fiber.Ctx) error { return BadRequest(c, "invalid", fiber.Map{"field": "x"}) })
	app.Get("/missing", func(c *fiber.Ctx) error { return NotFound(c, "nope") })

	code, out := decode(t, app, "/ok")
	assert.Equal(t, 200, code)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "fetched", out["message"])
	assert.Equal(t, map[string]interface{}{}, out["metadata"])

	code, out = decode(t, app, "/created")
	assert.Equal(t, 201, code)
	assert.Equal(t, float64(1), out["metadata"].(map[string]interface{})["page"])

	code, out = decode(t, app, "/bad")
	assert.Equal(t, 400, code)
	errObj := out["error"].(map[string]interface{})
	assert.Equal(t, "invalid", errObj["message"])
	assert.Equal(t, float64(400), errObj["statusCode"])
	assert.Equal(t, "x", errObj["details"].(map[string]interface{})["field"])

	code, out = decode(t, app, "/missing")
	assert.Equal(t, 404, code)
	assert.Equal(t, "error", out["status"])
}

func TestErrorEchoesTraceID(t *testing.T) {
	app := fiber.New()
	app.Get("/conflict", func(c *fiber.Ctx) error {
		c.Set("X-Trace-Id", "trace-1")
		return Conflict(c, "key reused")
	})
	app.Get("/unprocessable", func(c *fiber.Ctx) error { return Unprocessable(c, "no recipients") })

	code, out := decode(t, app, "/conflict")
	assert.Equal(t, 409, code)
	errObj := out["error"].(map[string]interface{})
	assert.Equal(t, "trace-1", errObj["traceId"])

	code, out = decode(t, app, "/unprocessable")
	assert.Equal(t, 422, code)
	_, hasTrace := out["error"].(map[string]interface{})["traceId"]
	assert.False(t, hasTrace)
}

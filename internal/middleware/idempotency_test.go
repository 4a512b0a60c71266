package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/firstcare-health/member-registry/internal/logging"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		cache.Close()
		mr.Close()
	})
	return mr, cache
}

func setupIdempotencyApp(t *testing.T, status int) (*fiber.App, *atomic.Int32) {
	t.Helper()
	_, cache := newMiniredis(t)

	var calls atomic.Int32
	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Post("/api/register", func(c *fiber.Ctx) error {
		n := calls.Add(1)
		return c.Status(status).JSON(fiber.Map{"call": n})
	})
	return app, &calls
}

func post(t *testing.T, app *fiber.App, key string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/api/register", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	app, calls := setupIdempotencyApp(t, fiber.StatusOK)

	post(t, app, "")
	post(t, app, "")

	if calls.Load() != 2 {
		t.Fatalf("expected handler to run twice, ran %d", calls.Load())
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	app, calls := setupIdempotencyApp(t, fiber.StatusOK)

	status, first := post(t, app, "abc123")
	if status != fiber.StatusOK {
		t.Fatalf("expected status %d got %d", fiber.StatusOK, status)
	}

	status, second := post(t, app, "abc123")
	if status != fiber.StatusOK {
		t.Fatalf("expected replayed status %d got %d", fiber.StatusOK, status)
	}
	if first != second {
		t.Fatalf("expected replayed body %s got %s", first, second)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected handler to run once, ran %d", calls.Load())
	}

	post(t, app, "other-key")
	if calls.Load() != 2 {
		t.Fatalf("expected a new key to reach the handler")
	}
}

func TestIdempotencyDoesNotStoreServerErrors(t *testing.T) {
	app, calls := setupIdempotencyApp(t, fiber.StatusInternalServerError)

	post(t, app, "retry-me")
	post(t, app, "retry-me")

	if calls.Load() != 2 {
		t.Fatalf("expected failed request to be retried, handler ran %d", calls.Load())
	}
}

func TestIdempotencyRejectsInFlightDuplicate(t *testing.T) {
	mr, cache := newMiniredis(t)
	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Post("/api/register", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	if err := mr.Set(idempotencyPrefix+"/api/register:busy", inProgressMarker); err != nil {
		t.Fatalf("seed marker: %v", err)
	}

	status, _ := post(t, app, "busy")
	if status != fiber.StatusConflict {
		t.Fatalf("expected %d got %d", fiber.StatusConflict, status)
	}
}

package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis keys for request stats. Exported for the health service and handlers.
const (
	KeyReqTotal  = "health:global:req_total"
	KeyReqErrors = "health:global:req_errors"
	KeyResTime   = "health:global:res_time_total"
	KeyResCount  = "health:global:res_count"
	KeyStartTime = "health:global:start_time"
	KeyLastReq   = "health:global:last_request"
	KeyErrorLog  = "health:global:error_log"

	errorLogMax = 50
)

// HealthMarker records request stats in Redis (skip /, /health*, favicon).
// 5xx responses are also pushed onto a capped error log.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/" || strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		ms := time.Since(start).Milliseconds()

		lastReq, _ := json.Marshal(map[string]interface{}{
			"time":   start.UTC(),
			"ip":     c.IP(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
			"status": status,
		})

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_, _ = rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, KeyLastReq, lastReq, 0)
			pipe.Incr(ctx, KeyReqTotal)
			pipe.Incr(ctx, KeyResCount)
			pipe.IncrByFloat(ctx, KeyResTime, float64(ms))
			if status >= 500 {
				entry, _ := json.Marshal(map[string]interface{}{
					"time":     start.UTC(),
					"path":     c.OriginalURL(),
					"method":   c.Method(),
					"status":   status,
					"trace_id": GetTraceID(c),
				})
				pipe.Incr(ctx, KeyReqErrors)
				pipe.LPush(ctx, KeyErrorLog, entry)
				pipe.LTrim(ctx, KeyErrorLog, 0, errorLogMax-1)
			}
			return nil
		})
		return err
	}
}

package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

const (
	// IdempotencyKeyHeader is the header for idempotency key.
	IdempotencyKeyHeader = "Idempotency-Key"
	// idempotencyKeyPrefix is the Redis key prefix.
	idempotencyKeyPrefix = "idempotency:"
	// defaultIdempotencyTTL is the default TTL for idempotency keys.
	defaultIdempotencyTTL = 24 * time.Hour
)

// IdempotencyConfig holds idempotency middleware configuration.
type IdempotencyConfig struct {
	// TTL is the time to live for idempotency keys.
	TTL time.Duration
	// Methods are the HTTP methods to apply idempotency check.
	// Default: POST, PUT, PATCH
	Methods []string
}

// DefaultIdempotencyConfig returns the default idempotency configuration.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     defaultIdempotencyTTL,
		Methods: []string{"POST", "PUT", "PATCH"},
	}
}

// idempotencyResponse stores the cached response.
type idempotencyResponse struct {
	StatusCode int    `json:"status_code"`
	Body       []byte `json:"body"`
}

// idempotencyResponseWriter wraps gin.ResponseWriter to capture the response.
type idempotencyResponseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency returns a middleware that replays cached responses for repeated
// requests carrying the same Idempotency-Key. Requires Redis; a nil client
// disables the middleware.
func Idempotency(redis goredis.UniversalClient, cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL == 0 {
		cfg.TTL = defaultIdempotencyTTL
	}
	if len(cfg.Methods) == 0 {
		cfg.Methods = []string{"POST", "PUT", "PATCH"}
	}

	methodSet := make(map[string]bool)
	for _, m := range cfg.Methods {
		methodSet[m] = true
	}

	return func(c *gin.Context) {
		if redis == nil || !methodSet[c.Request.Method] {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		// Scope the key to caller and route so the same key cannot replay a
		// different user's response.
		sum := sha256.Sum256([]byte(GetUserID(c).String() + ":" + c.Request.Method + ":" + c.FullPath() + ":" + key))
		redisKey := idempotencyKeyPrefix + hex.EncodeToString(sum[:])

		ctx := c.Request.Context()
		if cached, err := redis.Get(ctx, redisKey).Bytes(); err == nil {
			var resp idempotencyResponse
			if json.Unmarshal(cached, &resp) == nil {
				c.Data(resp.StatusCode, "application/json", resp.Body)
				c.Abort()
				return
			}
		}

		writer := &idempotencyResponseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer

		c.Next()

		// Only cache successful outcomes; failed calls stay retryable.
		status := writer.Status()
		if status >= http.StatusOK && status < http.StatusMultipleChoices {
			payload, err := json.Marshal(idempotencyResponse{
				StatusCode: status,
				Body:       writer.body.Bytes(),
			})
			if err == nil {
				_ = redis.Set(ctx, redisKey, payload, cfg.TTL).Err()
			}
		}
	}
}

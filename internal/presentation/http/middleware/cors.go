package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tableside-api/internal/config"
)

// Headers the POS and self-service clients must always be allowed to send
var requiredCORSHeaders = []string{
	"Authorization",
	"Content-Type",
	IdempotencyKeyHeader,
	OutletSlugHeader,
}

// CORSMiddleware creates a CORS middleware with the provided configuration
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: cfg.AllowedMethods,
		AllowHeaders: withRequired(cfg.AllowedHeaders, append([]string{"Accept", "Origin", "X-Request-ID"}, requiredCORSHeaders...)),
		ExposeHeaders: []string{
			"Content-Disposition",
			"Content-Length",
			"Retry-After",
			"X-Idempotency-Replayed",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	if len(corsConfig.AllowMethods) == 0 {
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"}
	}

	return cors.New(corsConfig)
}

// withRequired returns configured, or defaults when empty, plus any required header it lacks
func withRequired(configured, defaults []string) []string {
	if len(configured) == 0 {
		return defaults
	}
	headers := append([]string(nil), configured...)
	for _, req := range requiredCORSHeaders {
		found := false
		for _, h := range headers {
			if h == req {
				found = true
				break
			}
		}
		if !found {
			headers = append(headers, req)
		}
	}
	return headers
}

package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	obsctx "github.com/smallbiznis/payrail/internal/observability/context"
	"github.com/smallbiznis/payrail/internal/observability/tracing"
)

// MiddlewareConfig tunes request logging.
type MiddlewareConfig struct {
	// SkipPaths are served without an access log line.
	SkipPaths []string
}

// GinMiddleware tags every request with an id and writes one access log
// line per request with sensitive headers masked.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, path := range cfg.SkipPaths {
		skip[path] = struct{}{}
	}

	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-Id", requestID)

		ctx := tracing.ExtractHTTP(c.Request.Context(), c.Request.Header)
		c.Request = c.Request.WithContext(obsctx.WithRequestID(ctx, requestID))

		start := time.Now()
		c.Next()

		if _, ok := skip[c.FullPath()]; ok {
			return
		}

		log := FromContext(c.Request.Context())
		if merchantID := obsctx.MerchantIDFromGin(c); merchantID != "" {
			log = log.With(zap.String("merchant_id", merchantID))
		}
		log.Info("http_request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.Any("headers", MaskHeaders(c.Request.Header)),
		)
	}
}

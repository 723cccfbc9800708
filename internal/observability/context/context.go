// Package context carries request-scoped identity across layers without
// widening function signatures.
package context

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

type contextKey string

const (
	requestIDKey  contextKey = "observability_request_id"
	merchantIDKey contextKey = "observability_merchant_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

func WithMerchantID(ctx context.Context, merchantID string) context.Context {
	if ctx == nil || merchantID == "" {
		return ctx
	}
	return context.WithValue(ctx, merchantIDKey, merchantID)
}

func MerchantIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(merchantIDKey).(string)
	return value
}

// MerchantIDFromGin reads the merchant id from the request context first
// and falls back to what a handler stashed on the gin context.
func MerchantIDFromGin(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if c.Request != nil {
		if value := MerchantIDFromContext(c.Request.Context()); value != "" {
			return value
		}
	}
	if raw, ok := c.Get("merchant_id"); ok {
		if value, isString := raw.(string); isString {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

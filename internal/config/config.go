package config

import (
	"os"
	"strconv"
	"strings"

	"go.uber.org/fx"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Addr        string
	DatabaseDSN string
	ServiceName string
	Environment string

	// SellerPaymeID and PaymeClientKey are the gateway credentials in
	// the body-key shape.
	SellerPaymeID  string
	PaymeClientKey string

	// MerchantsSendPaymentID lists merchants whose gateway requests are
	// correlated by payment id instead of attempt id.
	MerchantsSendPaymentID []string

	TracingEnabled       bool
	TracingEndpoint      string
	TracingProtocol      string
	TracingSamplingRatio float64
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

func Load() Config {
	return Config{
		Addr:                   envOr("PAYRAIL_ADDR", ":8080"),
		DatabaseDSN:            os.Getenv("PAYRAIL_DATABASE_DSN"),
		ServiceName:            envOr("PAYRAIL_SERVICE_NAME", "payrail"),
		Environment:            envOr("PAYRAIL_ENVIRONMENT", "development"),
		SellerPaymeID:          os.Getenv("PAYRAIL_PAYME_SELLER_ID"),
		PaymeClientKey:         os.Getenv("PAYRAIL_PAYME_CLIENT_KEY"),
		MerchantsSendPaymentID: splitList(os.Getenv("PAYRAIL_MERCHANTS_SEND_PAYMENT_ID")),
		TracingEnabled:         envBool("PAYRAIL_TRACING_ENABLED"),
		TracingEndpoint:        os.Getenv("PAYRAIL_TRACING_ENDPOINT"),
		TracingProtocol:        envOr("PAYRAIL_TRACING_PROTOCOL", "grpc"),
		TracingSamplingRatio:   envFloat("PAYRAIL_TRACING_SAMPLING_RATIO", 0.1),
	}
}

// SendsPaymentID reports whether the merchant is configured to use the
// payment id as the gateway correlation id.
func (c Config) SendsPaymentID(merchantID string) bool {
	for _, id := range c.MerchantsSendPaymentID {
		if id == merchantID {
			return true
		}
	}
	return false
}

func envBool(key string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && value
}

func envFloat(key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return fallback
	}
	return value
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

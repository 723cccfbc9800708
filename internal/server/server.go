package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/payrail/internal/config"
	disputedomain "github.com/smallbiznis/payrail/internal/dispute/domain"
	gatewaydomain "github.com/smallbiznis/payrail/internal/gateway/domain"
	obsctx "github.com/smallbiznis/payrail/internal/observability/context"
	"github.com/smallbiznis/payrail/internal/observability/logger"
	"github.com/smallbiznis/payrail/internal/observability/metrics"
	"github.com/smallbiznis/payrail/internal/observability/tracing"
	webhookdomain "github.com/smallbiznis/payrail/internal/webhook/domain"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Cfg      config.Config
	HTTP     *metrics.HTTPMetrics
	Webhooks webhookdomain.Service
}

type Server struct {
	log      *zap.Logger
	cfg      config.Config
	http     *metrics.HTTPMetrics
	webhooks webhookdomain.Service
	limiter  *rateLimiter
}

func New(p Params) *Server {
	return &Server{
		log:      p.Log.Named("server"),
		cfg:      p.Cfg,
		http:     p.HTTP,
		webhooks: p.Webhooks,
		limiter:  newRateLimiter(ingestRateLimit, ingestRateWindow),
	}
}

// Router builds the HTTP surface: webhook ingestion, sync application,
// flow initiation, health and metrics.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware(s.http))
	r.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limited := r.Group("/", s.rateLimit)
	limited.POST("/webhooks/:provider", s.IngestWebhook)
	limited.POST("/payments", s.InitiatePayment)
	limited.POST("/payments/:payment_id/sync", s.ApplyPaymentSync)
	limited.POST("/refunds/:payment_id/sync", s.ApplyRefundSync)

	r.GET("/payments/:payment_id", s.GetPayment)
	r.GET("/refunds/:payment_id", s.GetRefund)
	r.GET("/records/:resource_id", s.GetRecord)

	return r
}

func (s *Server) rateLimit(c *gin.Context) {
	if !s.limiter.Allow(c.ClientIP()) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate_limited"})
		return
	}
	c.Next()
}

// AbortWithError maps domain errors onto HTTP responses.
func AbortWithError(c *gin.Context, err error) {
	var invalidFormat gatewaydomain.InvalidDataFormatError
	if errors.As(err, &invalidFormat) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":           "invalid_data_format",
			"field":           invalidFormat.Field,
			"expected_format": invalidFormat.Expected,
		})
		return
	}
	var missingID gatewaydomain.MissingCorrelationIDError
	if errors.As(err, &missingID) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "missing_correlation_id",
			"id":    missingID.ID,
		})
		return
	}
	var notImplemented gatewaydomain.NotImplementedError
	if errors.As(err, &notImplemented) {
		c.AbortWithStatusJSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
		return
	}

	switch {
	case errors.Is(err, webhookdomain.ErrInvalidProvider),
		errors.Is(err, webhookdomain.ErrInvalidPayload):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, webhookdomain.ErrRecordNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, gatewaydomain.ErrResponseHandlingFailed):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

// IngestWebhook accepts a gateway push. Duplicate deliveries and
// rejected dispute transitions are acknowledged so the gateway stops
// retrying them.
func (s *Server) IngestWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		AbortWithError(c, webhookdomain.ErrInvalidPayload)
		return
	}

	ctx, span := otel.Tracer("payrail/server").Start(c.Request.Context(), "webhook.ingest",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(tracing.SafeAttributes(
			attribute.String("provider", c.Param("provider")),
		)...),
	)
	defer span.End()

	err = s.webhooks.IngestWebhook(ctx, c.Param("provider"), payload, c.Request.Header)
	if err != nil {
		if safeErr := tracing.SafeError(err); safeErr != nil {
			span.RecordError(safeErr)
		}
		if errors.Is(err, webhookdomain.ErrEventAlreadyProcessed) ||
			errors.Is(err, disputedomain.ErrWebhookValidationFailed) {
			c.JSON(http.StatusOK, gin.H{"status": "discarded"})
			return
		}
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type initiatePaymentRequest struct {
	MerchantID   string  `json:"merchant_id"`
	PaymentID    *string `json:"payment_id"`
	AttemptID    *string `json:"attempt_id"`
	Method       string  `json:"method"`
	SetupMandate bool    `json:"setup_mandate"`
	AutoCapture  bool    `json:"auto_capture"`
}

func (s *Server) InitiatePayment(c *gin.Context) {
	var req initiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, webhookdomain.ErrInvalidPayload)
		return
	}
	c.Request = c.Request.WithContext(
		obsctx.WithMerchantID(c.Request.Context(), req.MerchantID))

	record, err := s.webhooks.InitiatePayment(c.Request.Context(), webhookdomain.InitiateRequest{
		MerchantID:   req.MerchantID,
		PaymentID:    req.PaymentID,
		AttemptID:    req.AttemptID,
		Method:       req.Method,
		SetupMandate: req.SetupMandate,
		AutoCapture:  req.AutoCapture,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) GetPayment(c *gin.Context) {
	record, err := s.webhooks.GetPayment(c.Request.Context(), c.Param("payment_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) GetRefund(c *gin.Context) {
	record, err := s.webhooks.GetRefund(c.Request.Context(), c.Param("payment_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) GetRecord(c *gin.Context) {
	record, err := s.webhooks.GetByResourceID(c.Request.Context(), c.Param("resource_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) ApplyPaymentSync(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		AbortWithError(c, webhookdomain.ErrInvalidPayload)
		return
	}
	record, err := s.webhooks.ApplyPaymentSync(c.Request.Context(), c.Param("payment_id"), payload)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) ApplyRefundSync(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		AbortWithError(c, webhookdomain.ErrInvalidPayload)
		return
	}
	record, err := s.webhooks.ApplyRefundSync(c.Request.Context(), c.Param("payment_id"), payload)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

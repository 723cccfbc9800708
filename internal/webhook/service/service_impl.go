package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/smallbiznis/payrail/internal/cache"
	"github.com/smallbiznis/payrail/internal/clock"
	"github.com/smallbiznis/payrail/internal/config"
	disputedomain "github.com/smallbiznis/payrail/internal/dispute/domain"
	gatewaydomain "github.com/smallbiznis/payrail/internal/gateway/domain"
	"github.com/smallbiznis/payrail/internal/gateway/payme"
	"github.com/smallbiznis/payrail/internal/observability/logger"
	"github.com/smallbiznis/payrail/internal/observability/metrics"
	recorddomain "github.com/smallbiznis/payrail/internal/record/domain"
	"github.com/smallbiznis/payrail/internal/refid"
	webhookdomain "github.com/smallbiznis/payrail/internal/webhook/domain"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Recent  cache.Cache[string, struct{}]
	Events  webhookdomain.Repository
	Records recorddomain.Repository
	Builder *recorddomain.Builder
	Metrics *metrics.DisputeMetrics
	Cfg     config.Config
}

// recentTTL bounds the in-memory replay window; the database unique
// index remains the source of truth past it.
const recentTTL = time.Hour

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	recent  cache.Cache[string, struct{}]
	events  webhookdomain.Repository
	records recorddomain.Repository
	builder *recorddomain.Builder
	metrics *metrics.DisputeMetrics
	cfg     config.Config
	auth    payme.AuthType
}

func NewService(p Params) (webhookdomain.Service, error) {
	auth, err := payme.AuthTypeFrom(map[string]any{
		"api_key": p.Cfg.SellerPaymeID,
		"key1":    p.Cfg.PaymeClientKey,
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		db:      p.DB,
		log:     p.Log.Named("webhook.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		recent:  p.Recent,
		events:  p.Events,
		records: p.Records,
		builder: p.Builder,
		metrics: p.Metrics,
		cfg:     p.Cfg,
		auth:    auth,
	}, nil
}

// IngestWebhook handles one asynchronous delivery. Deliveries may arrive
// out of order, duplicated or retried; dedupe catches exact replays and
// the dispute validator catches everything dedupe cannot.
func (s *Service) IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider != webhookdomain.ProviderPayme {
		return webhookdomain.ErrInvalidProvider
	}
	if !json.Valid(payload) {
		return webhookdomain.ErrInvalidPayload
	}

	event, err := payme.ParseWebhookEvent(payload)
	if err != nil {
		s.metrics.IncWebhookProcessed("failed")
		return err
	}

	log := logger.FromContext(ctx).With(
		zap.String("provider", provider),
		zap.String("notify_type", string(event.NotifyType)),
		zap.String("payme_sale_id", event.PaymeSaleID),
		zap.String("payme_signature", logger.MaskSignature(event.PaymeSignature)),
	)

	eventKey := event.PaymeTransactionID + ":" + string(event.NotifyType)
	if _, seen := s.recent.Get(eventKey); seen {
		s.metrics.IncWebhookProcessed("duplicate")
		log.Info("webhook delivery already processed")
		return webhookdomain.ErrEventAlreadyProcessed
	}

	now := s.clock.Now().UTC()
	stored := &webhookdomain.EventRecord{
		ID:              s.genID.Generate(),
		Provider:        provider,
		ProviderEventID: eventKey,
		EventType:       string(event.NotifyType),
		Payload:         datatypes.JSON(payload),
		ReceivedAt:      now,
	}
	inserted, err := s.events.InsertEvent(ctx, s.db, stored)
	if err != nil {
		return err
	}
	if !inserted {
		stored, err = s.events.FindEvent(ctx, s.db, provider, eventKey)
		if err != nil {
			return err
		}
		if stored == nil {
			return webhookdomain.ErrInvalidPayload
		}
		if stored.ProcessedAt != nil {
			s.recent.Set(eventKey, struct{}{}, recentTTL)
			s.metrics.IncWebhookProcessed("duplicate")
			log.Info("webhook delivery already processed")
			return webhookdomain.ErrEventAlreadyProcessed
		}
	}

	env := event.Envelope()
	if err := s.applyEnvelope(ctx, env, log); err != nil {
		if errors.Is(err, disputedomain.ErrWebhookValidationFailed) {
			// Stale or out-of-order dispute delivery: acknowledge the
			// event, keep the stored state.
			if markErr := s.events.MarkProcessed(ctx, s.db, stored.ID, now); markErr != nil {
				return markErr
			}
			s.recent.Set(eventKey, struct{}{}, recentTTL)
			s.metrics.IncWebhookProcessed("discarded")
			log.Warn("dispute webhook discarded", zap.Error(err))
			return err
		}
		s.metrics.IncWebhookProcessed("failed")
		return err
	}

	if err := s.events.MarkProcessed(ctx, s.db, stored.ID, now); err != nil {
		return err
	}
	s.recent.Set(eventKey, struct{}{}, recentTTL)
	s.metrics.IncWebhookProcessed("applied")
	log.Info("webhook delivery applied")
	return nil
}

func (s *Service) applyEnvelope(ctx context.Context, env gatewaydomain.Envelope, log *zap.Logger) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		record, err := s.lookupTarget(ctx, tx, env)
		if err != nil {
			return err
		}
		if record == nil {
			return webhookdomain.ErrRecordNotFound
		}

		merged, err := s.builder.Merge(*record, env)
		if err != nil {
			return err
		}
		if env.MandateToken != nil && env.Path == gatewaydomain.PathWebhook {
			log.Info("mandate reference updated",
				zap.String("buyer_key", logger.MaskToken(*env.MandateToken)))
		}
		return s.records.Update(ctx, tx, &merged)
	})
}

// lookupTarget locks the record a delivery updates. Attempt and dispute
// events address the sale id, refund events the refund's own transaction
// id; both land in the envelope's resource id.
func (s *Service) lookupTarget(ctx context.Context, tx *gorm.DB, env gatewaydomain.Envelope) (*recorddomain.Record, error) {
	return s.records.FindByResourceIDForUpdate(ctx, tx, webhookdomain.ProviderPayme, env.ResourceID)
}

// ApplyPaymentSync folds a synchronous payment-query reply into the
// stored record. The mandate token is never applied on this path. A
// gateway error body fills the record's result slot instead.
func (s *Service) ApplyPaymentSync(ctx context.Context, paymentID string, payload []byte) (*recorddomain.Record, error) {
	if gatewayErr, ok := payme.ParseErrorResponse(payload); ok {
		return s.applyError(ctx, paymentID, gatewaydomain.EntityAttempt, gatewayErr)
	}

	env, err := payme.ResolvePayment(payload)
	if err != nil {
		return nil, err
	}

	var merged recorddomain.Record
	err = s.db.Transaction(func(tx *gorm.DB) error {
		record, err := s.records.FindForUpdate(ctx, tx, webhookdomain.ProviderPayme, paymentID, gatewaydomain.EntityAttempt)
		if err != nil {
			return err
		}
		if record == nil {
			return webhookdomain.ErrRecordNotFound
		}
		merged, err = s.builder.Merge(*record, env)
		if err != nil {
			return err
		}
		return s.records.Update(ctx, tx, &merged)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment sync applied",
		zap.String("payment_id", paymentID),
		zap.String("correlation_id", s.correlationID(merged)),
		zap.String("status", string(merged.AttemptStatus)))
	return &merged, nil
}

// ApplyRefundSync folds a synchronous refund-query reply into the stored
// refund record. The query cannot even be issued without the refund's
// gateway id, so its absence is rejected up front.
func (s *Service) ApplyRefundSync(ctx context.Context, paymentID string, payload []byte) (*recorddomain.Record, error) {
	if gatewayErr, ok := payme.ParseErrorResponse(payload); ok {
		return s.applyError(ctx, paymentID, gatewaydomain.EntityRefund, gatewayErr)
	}

	var merged recorddomain.Record
	err := s.db.Transaction(func(tx *gorm.DB) error {
		record, err := s.records.FindForUpdate(ctx, tx, webhookdomain.ProviderPayme, paymentID, gatewaydomain.EntityRefund)
		if err != nil {
			return err
		}
		if record == nil {
			return webhookdomain.ErrRecordNotFound
		}
		if record.ResourceID == "" {
			return gatewaydomain.MissingCorrelationIDError{ID: "connector_refund_id"}
		}
		env, err := payme.ResolveRefund(payload)
		if err != nil {
			return err
		}
		merged, err = s.builder.Merge(*record, env)
		if err != nil {
			return err
		}
		return s.records.Update(ctx, tx, &merged)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("refund sync applied",
		zap.String("payment_id", paymentID),
		zap.String("refund_status", string(merged.RefundStatus)))
	return &merged, nil
}

// applyError writes a gateway error body into the record's result slot.
func (s *Service) applyError(ctx context.Context, paymentID string, kind gatewaydomain.EntityKind, gatewayErr payme.ErrorResponse) (*recorddomain.Record, error) {
	var merged recorddomain.Record
	err := s.db.Transaction(func(tx *gorm.DB) error {
		record, err := s.records.FindForUpdate(ctx, tx, webhookdomain.ProviderPayme, paymentID, kind)
		if err != nil {
			return err
		}
		if record == nil {
			return webhookdomain.ErrRecordNotFound
		}
		merged = s.builder.MergeError(*record, gatewayErr.Code, gatewayErr.Message)
		return s.records.Update(ctx, tx, &merged)
	})
	if err != nil {
		return nil, err
	}

	s.log.Warn("gateway error recorded",
		zap.String("payment_id", paymentID),
		zap.String("code", gatewayErr.Code))
	return &merged, nil
}

// InitiatePayment creates the canonical record for a new flow. Ids are
// validated when supplied and generated otherwise; unsupported payment
// methods are rejected before any gateway call.
func (s *Service) InitiatePayment(ctx context.Context, req webhookdomain.InitiateRequest) (*recorddomain.Record, error) {
	if _, err := payme.SalePaymentMethodOf(payme.PaymentMethod(req.Method)); err != nil {
		return nil, err
	}
	saleType := payme.SaleTypeFor(req.SetupMandate, req.AutoCapture)

	paymentID, err := refid.GetOrGenerate("payment_id", req.PaymentID, "pay")
	if err != nil {
		return nil, err
	}
	attemptID, err := refid.GetOrGenerate("attempt_id", req.AttemptID, "att")
	if err != nil {
		return nil, err
	}

	record := recorddomain.New(
		s.genID.Generate(),
		req.MerchantID,
		paymentID,
		attemptID,
		webhookdomain.ProviderPayme,
		gatewaydomain.EntityAttempt,
	)
	if err := s.records.Insert(ctx, s.db, &record); err != nil {
		return nil, err
	}

	s.log.Info("payment initiated",
		zap.String("merchant_id", req.MerchantID),
		zap.String("payment_id", paymentID),
		zap.String("sale_type", string(saleType)))
	return &record, nil
}

// GetPayment reads the canonical attempt record for a payment.
func (s *Service) GetPayment(ctx context.Context, paymentID string) (*recorddomain.Record, error) {
	return s.getRecord(ctx, paymentID, gatewaydomain.EntityAttempt)
}

// GetRefund reads the canonical refund record for a payment.
func (s *Service) GetRefund(ctx context.Context, paymentID string) (*recorddomain.Record, error) {
	return s.getRecord(ctx, paymentID, gatewaydomain.EntityRefund)
}

// GetByResourceID reads a record by its gateway resource id.
func (s *Service) GetByResourceID(ctx context.Context, resourceID string) (*recorddomain.Record, error) {
	record, err := s.records.FindByResourceID(ctx, s.db, webhookdomain.ProviderPayme, resourceID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, webhookdomain.ErrRecordNotFound
	}
	return record, nil
}

func (s *Service) getRecord(ctx context.Context, paymentID string, kind gatewaydomain.EntityKind) (*recorddomain.Record, error) {
	record, err := s.records.Find(ctx, s.db, webhookdomain.ProviderPayme, paymentID, kind)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, webhookdomain.ErrRecordNotFound
	}
	return record, nil
}

func (s *Service) correlationID(record recorddomain.Record) string {
	return refid.ChooseCorrelationID(
		s.cfg.SendsPaymentID(record.MerchantID),
		record.PaymentID,
		record.AttemptID,
	)
}

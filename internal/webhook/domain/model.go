package domain

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	recorddomain "github.com/smallbiznis/payrail/internal/record/domain"
)

// ProviderPayme is the only gateway this service currently hosts.
const ProviderPayme = "payme"

// EventRecord stores one webhook delivery for dedupe and audit. The
// gateway sends no event id, so ProviderEventID is derived from the
// transaction id and notify type.
type EventRecord struct {
	ID              snowflake.ID   `gorm:"primaryKey"`
	Provider        string         `gorm:"type:text;not null;uniqueIndex:idx_webhook_events_provider_event"`
	ProviderEventID string         `gorm:"type:text;not null;uniqueIndex:idx_webhook_events_provider_event"`
	EventType       string         `gorm:"type:text;not null"`
	Payload         datatypes.JSON `gorm:"not null"`
	ReceivedAt      time.Time      `gorm:"not null"`
	ProcessedAt     *time.Time
}

func (EventRecord) TableName() string { return "webhook_events" }

// InitiateRequest starts a new flow before any gateway call.
type InitiateRequest struct {
	MerchantID   string
	PaymentID    *string
	AttemptID    *string
	Method       string
	SetupMandate bool
	AutoCapture  bool
}

type Service interface {
	IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error
	ApplyPaymentSync(ctx context.Context, paymentID string, payload []byte) (*recorddomain.Record, error)
	ApplyRefundSync(ctx context.Context, paymentID string, payload []byte) (*recorddomain.Record, error)
	InitiatePayment(ctx context.Context, req InitiateRequest) (*recorddomain.Record, error)
	GetPayment(ctx context.Context, paymentID string) (*recorddomain.Record, error)
	GetRefund(ctx context.Context, paymentID string) (*recorddomain.Record, error)
	GetByResourceID(ctx context.Context, resourceID string) (*recorddomain.Record, error)
}

type Repository interface {
	InsertEvent(ctx context.Context, db *gorm.DB, event *EventRecord) (bool, error)
	FindEvent(ctx context.Context, db *gorm.DB, provider, providerEventID string) (*EventRecord, error)
	MarkProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error
}

var (
	ErrInvalidProvider       = errors.New("invalid_provider")
	ErrInvalidPayload        = errors.New("invalid_payload")
	ErrRecordNotFound        = errors.New("record_not_found")
	ErrEventAlreadyProcessed = errors.New("event_already_processed")
)

package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"

	disputedomain "github.com/smallbiznis/payrail/internal/dispute/domain"
	gatewaydomain "github.com/smallbiznis/payrail/internal/gateway/domain"
)

// Record is the single canonical view of one attempt, refund or dispute
// across its lifetime. It is created when a flow is initiated, updated
// once per resolved inbound event and never deleted here; retention is
// the persistence layer's concern. Callers must serialize updates per
// payment id before merging.
type Record struct {
	ID         snowflake.ID             `gorm:"primaryKey"`
	MerchantID string                   `gorm:"type:text;not null;index"`
	PaymentID  string                   `gorm:"type:text;not null;index"`
	AttemptID  string                   `gorm:"type:text;not null"`
	Connector  string                   `gorm:"type:text;not null"`
	Kind       gatewaydomain.EntityKind `gorm:"type:text;not null"`

	AttemptStatus gatewaydomain.AttemptStatus `gorm:"type:text"`
	RefundStatus  gatewaydomain.RefundStatus  `gorm:"type:text"`

	// ResourceID is the last-known gateway resource id for this entity.
	ResourceID string `gorm:"type:text;index"`

	// MandateRef is the saved-credential handle, set via webhooks only.
	MandateRef *string `gorm:"type:text"`

	// Metadata is an opaque slot holding correlated gateway identifiers.
	Metadata datatypes.JSON

	DisputeStage  disputedomain.Stage  `gorm:"type:text"`
	DisputeStatus disputedomain.Status `gorm:"type:text"`

	// ErrorCode and ErrorMessage form the error half of the result slot;
	// both nil means the last event resolved successfully.
	ErrorCode    *string `gorm:"type:text"`
	ErrorMessage *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Record) TableName() string { return "gateway_records" }

// New creates the record for a freshly initiated flow, before any
// gateway call has been made.
func New(id snowflake.ID, merchantID, paymentID, attemptID, connector string, kind gatewaydomain.EntityKind) Record {
	record := Record{
		ID:         id,
		MerchantID: merchantID,
		PaymentID:  paymentID,
		AttemptID:  attemptID,
		Connector:  connector,
		Kind:       kind,
	}
	switch kind {
	case gatewaydomain.EntityAttempt:
		record.AttemptStatus = gatewaydomain.AttemptStatusAuthorizing
	case gatewaydomain.EntityDispute:
		initial := disputedomain.Initial()
		record.DisputeStage = initial.Stage
		record.DisputeStatus = initial.Status
	}
	return record
}

// DisputeState reads the record's dispute axes, defaulting to the
// initial state for records that have not seen a dispute event yet.
func (r Record) DisputeState() disputedomain.State {
	if r.DisputeStage == "" || r.DisputeStatus == "" {
		return disputedomain.Initial()
	}
	return disputedomain.State{Stage: r.DisputeStage, Status: r.DisputeStatus}
}

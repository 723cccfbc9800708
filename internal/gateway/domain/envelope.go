package domain

import (
	disputedomain "github.com/smallbiznis/payrail/internal/dispute/domain"
)

// EntityKind selects which canonical vocabulary an envelope resolves into.
type EntityKind string

const (
	EntityAttempt EntityKind = "attempt"
	EntityRefund  EntityKind = "refund"
	EntityDispute EntityKind = "dispute"
)

// DeliveryPath records how the envelope reached us. The mandate token is
// propagated on the webhook path only.
type DeliveryPath string

const (
	PathWebhook DeliveryPath = "webhook"
	PathQuery   DeliveryPath = "query"
)

// Envelope is the normalized intermediate produced by response resolution,
// before status mapping. One envelope per resolved inbound event.
type Envelope struct {
	Kind          EntityKind
	Path          DeliveryPath
	SaleStatus    SaleStatus
	ResourceID    string
	TransactionID string
	MandateToken  *string
	Dispute       *disputedomain.State
}

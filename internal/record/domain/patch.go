package domain

import (
	"gorm.io/datatypes"

	disputedomain "github.com/smallbiznis/payrail/internal/dispute/domain"
	gatewaydomain "github.com/smallbiznis/payrail/internal/gateway/domain"
)

// Patch is a partial record update. Nil fields retain the previous
// value; a partial update never clears an untouched field.
type Patch struct {
	AttemptStatus *gatewaydomain.AttemptStatus
	RefundStatus  *gatewaydomain.RefundStatus
	ResourceID    *string
	MandateRef    *string
	Metadata      datatypes.JSON
	DisputeStage  *disputedomain.Stage
	DisputeStatus *disputedomain.Status
	ErrorCode     *string
	ErrorMessage  *string
}

// Apply copies prev and overrides only the fields the patch carries.
func (p Patch) Apply(prev Record) Record {
	next := prev
	if p.AttemptStatus != nil {
		next.AttemptStatus = *p.AttemptStatus
	}
	if p.RefundStatus != nil {
		next.RefundStatus = *p.RefundStatus
	}
	if p.ResourceID != nil {
		next.ResourceID = *p.ResourceID
	}
	if p.MandateRef != nil {
		next.MandateRef = p.MandateRef
	}
	if p.Metadata != nil {
		next.Metadata = p.Metadata
	}
	if p.DisputeStage != nil {
		next.DisputeStage = *p.DisputeStage
	}
	if p.DisputeStatus != nil {
		next.DisputeStatus = *p.DisputeStatus
	}
	if p.ErrorCode != nil {
		next.ErrorCode = p.ErrorCode
	}
	if p.ErrorMessage != nil {
		next.ErrorMessage = p.ErrorMessage
	}
	return next
}

package domain

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	disputedomain "github.com/smallbiznis/payrail/internal/dispute/domain"
	gatewaydomain "github.com/smallbiznis/payrail/internal/gateway/domain"
)

// connectorMetadata is the opaque blob serialized into the metadata slot
// to correlate the gateway's secondary transaction id.
type connectorMetadata struct {
	PaymeTransactionID string `json:"payme_transaction_id"`
}

// Builder merges resolved envelopes into canonical records.
type Builder struct {
	disputes *disputedomain.Validator
}

func NewBuilder(disputes *disputedomain.Validator) *Builder {
	return &Builder{disputes: disputes}
}

// Merge maps the envelope's raw status into the canonical vocabulary for
// its kind and folds it into prev. Fields absent from the envelope keep
// their previous value. On any error the previous record is returned
// unchanged so the caller can persist or discard it as a no-op.
//
// The mandate token is applied only on the webhook path: token
// propagation is defined to happen exclusively via webhooks, so the
// query path leaves the stored reference untouched even when the reply
// carried one. Preserved behavior, not to be fixed silently.
func (b *Builder) Merge(prev Record, env gatewaydomain.Envelope) (Record, error) {
	var patch Patch

	switch env.Kind {
	case gatewaydomain.EntityRefund:
		status, err := gatewaydomain.RefundStatusOf(env.SaleStatus)
		if err != nil {
			return prev, err
		}
		patch.RefundStatus = &status
	case gatewaydomain.EntityDispute:
		if env.Dispute == nil {
			return prev, fmt.Errorf("dispute envelope carries no lifecycle state: %w", gatewaydomain.ErrResponseHandlingFailed)
		}
		if err := b.disputes.Validate(prev.DisputeState(), *env.Dispute); err != nil {
			return prev, err
		}
		patch.DisputeStage = &env.Dispute.Stage
		patch.DisputeStatus = &env.Dispute.Status
		status := gatewaydomain.AttemptStatusOf(env.SaleStatus)
		patch.AttemptStatus = &status
	default:
		status := gatewaydomain.AttemptStatusOf(env.SaleStatus)
		patch.AttemptStatus = &status
	}

	if env.ResourceID != "" {
		patch.ResourceID = &env.ResourceID
	}
	if env.Path == gatewaydomain.PathWebhook && env.MandateToken != nil {
		patch.MandateRef = env.MandateToken
	}
	if env.TransactionID != "" {
		metadata, err := json.Marshal(connectorMetadata{PaymeTransactionID: env.TransactionID})
		if err != nil {
			return prev, fmt.Errorf("serializing connector metadata: %w", gatewaydomain.ErrResponseHandlingFailed)
		}
		patch.Metadata = datatypes.JSON(metadata)
	}

	return patch.Apply(prev), nil
}

// MergeError folds a gateway error body into the record's result slot.
func (b *Builder) MergeError(prev Record, code, message string) Record {
	patch := Patch{
		ErrorCode:    &code,
		ErrorMessage: &message,
	}
	status := gatewaydomain.AttemptStatusFailure
	if prev.Kind == gatewaydomain.EntityAttempt {
		patch.AttemptStatus = &status
	}
	if prev.Kind == gatewaydomain.EntityRefund {
		failed := gatewaydomain.RefundStatusFailure
		patch.RefundStatus = &failed
	}
	return patch.Apply(prev)
}

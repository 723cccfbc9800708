package domain

import (
	"encoding/json"
	"fmt"
)

// SaleStatus is the gateway-native status vocabulary, received verbatim
// in responses and webhook pushes. The set is closed: unknown values are
// rejected at parse time so every downstream mapping stays total.
type SaleStatus string

const (
	SaleStatusInitial       SaleStatus = "initial"
	SaleStatusCompleted     SaleStatus = "completed"
	SaleStatusRefunded      SaleStatus = "refunded"
	SaleStatusPartialRefund SaleStatus = "partial-refund"
	SaleStatusAuthorized    SaleStatus = "authorized"
	SaleStatusVoided        SaleStatus = "voided"
	SaleStatusPartialVoid   SaleStatus = "partial-void"
	SaleStatusFailed        SaleStatus = "failed"
	SaleStatusChargeback    SaleStatus = "chargeback"
)

// SaleStatuses lists every value the gateway can emit.
var SaleStatuses = []SaleStatus{
	SaleStatusInitial,
	SaleStatusCompleted,
	SaleStatusRefunded,
	SaleStatusPartialRefund,
	SaleStatusAuthorized,
	SaleStatusVoided,
	SaleStatusPartialVoid,
	SaleStatusFailed,
	SaleStatusChargeback,
}

// ParseSaleStatus validates a raw string against the closed set.
func ParseSaleStatus(raw string) (SaleStatus, error) {
	for _, s := range SaleStatuses {
		if raw == string(s) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown sale status %q: %w", raw, ErrResponseHandlingFailed)
}

func (s *SaleStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSaleStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// AttemptStatus is the canonical payment-attempt vocabulary.
type AttemptStatus string

const (
	AttemptStatusAuthorizing  AttemptStatus = "authorizing"
	AttemptStatusCharged      AttemptStatus = "charged"
	AttemptStatusAutoRefunded AttemptStatus = "auto_refunded"
	AttemptStatusAuthorized   AttemptStatus = "authorized"
	AttemptStatusVoided       AttemptStatus = "voided"
	AttemptStatusFailure      AttemptStatus = "failure"
)

// RefundStatus is the canonical refund vocabulary.
type RefundStatus string

const (
	RefundStatusSuccess RefundStatus = "success"
	RefundStatusFailure RefundStatus = "failure"
)

// AttemptStatusOf maps a sale status into the attempt vocabulary. The
// mapping is total over the closed set; ParseSaleStatus guards the set,
// so the trailing return is unreachable for parsed values.
//
// Chargeback lands in the same bucket as refunds. Downstream consumers
// that need to distinguish the two must read the raw status.
func AttemptStatusOf(s SaleStatus) AttemptStatus {
	switch s {
	case SaleStatusInitial:
		return AttemptStatusAuthorizing
	case SaleStatusCompleted:
		return AttemptStatusCharged
	case SaleStatusRefunded, SaleStatusPartialRefund, SaleStatusChargeback:
		return AttemptStatusAutoRefunded
	case SaleStatusAuthorized:
		return AttemptStatusAuthorized
	case SaleStatusVoided, SaleStatusPartialVoid:
		return AttemptStatusVoided
	case SaleStatusFailed:
		return AttemptStatusFailure
	}
	return AttemptStatusFailure
}

// RefundStatusOf maps a sale status into the refund vocabulary. The
// mapping is partial: only refund outcomes are valid terminal refund
// states, everything else is a handling failure.
func RefundStatusOf(s SaleStatus) (RefundStatus, error) {
	switch s {
	case SaleStatusRefunded, SaleStatusPartialRefund:
		return RefundStatusSuccess, nil
	case SaleStatusFailed:
		return RefundStatusFailure, nil
	default:
		return "", fmt.Errorf("sale status %q is not a refund state: %w", s, ErrResponseHandlingFailed)
	}
}

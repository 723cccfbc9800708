package domain

import (
	"errors"
	"fmt"
)

var (
	ErrResponseHandlingFailed = errors.New("response_handling_failed")
	ErrFailedToObtainAuthType = errors.New("failed_to_obtain_auth_type")
)

// NotImplementedError marks a payment method or flow variant the gateway
// does not support. Permanent, never retried.
type NotImplementedError struct {
	Message string
}

func (e NotImplementedError) Error() string {
	return fmt.Sprintf("not_implemented: %s", e.Message)
}

// MissingCorrelationIDError is returned when a required correlation field
// is absent from the request context, before any gateway call is issued.
type MissingCorrelationIDError struct {
	ID string
}

func (e MissingCorrelationIDError) Error() string {
	return fmt.Sprintf("missing_correlation_id: %s", e.ID)
}

// InvalidDataFormatError is a client-facing rejection of a supplied id.
type InvalidDataFormatError struct {
	Field    string
	Expected string
}

func (e InvalidDataFormatError) Error() string {
	return fmt.Sprintf("invalid_data_format: field %s, expected %s", e.Field, e.Expected)
}

// Package refid validates caller-supplied correlation identifiers and
// synthesizes fresh ones when none were given.
package refid

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"

	gatewaydomain "github.com/smallbiznis/payrail/internal/gateway/domain"
)

const (
	// IDLength is the random suffix length of generated ids.
	IDLength = 14
	// MaxIDLength bounds caller-supplied ids.
	MaxIDLength = 64
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GetOrGenerate validates a supplied id or generates "prefix_<suffix>".
// Generation never fails; validation failures name the offending field.
func GetOrGenerate(key string, provided *string, prefix string) (string, error) {
	if provided == nil {
		return Generate(IDLength, prefix), nil
	}
	return Validate(*provided, key)
}

// GetOrGenerateUUID validates a supplied uuid-typed id or generates a
// fresh UUID.
func GetOrGenerateUUID(key string, provided *string) (string, error) {
	if provided == nil {
		return uuid.NewString(), nil
	}
	return ValidateUUID(*provided, key)
}

// Validate enforces the length bound on a caller-supplied id.
func Validate(id, key string) (string, error) {
	if len(id) > MaxIDLength {
		return "", invalidIDFormat(key)
	}
	return id, nil
}

// ValidateUUID enforces both the length bound and UUID syntax.
func ValidateUUID(id, key string) (string, error) {
	if _, err := uuid.Parse(id); err != nil || len(id) > MaxIDLength {
		return "", invalidIDFormat(key)
	}
	return id, nil
}

// Generate returns prefix + "_" + a random suffix of the given length.
func Generate(length int, prefix string) string {
	suffix := make([]byte, length)
	if _, err := rand.Read(suffix); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	for i, b := range suffix {
		suffix[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return prefix + "_" + string(suffix)
}

// ChooseCorrelationID returns the id sent to the gateway as the request
// reference: the payment id for merchants configured that way, the
// attempt id otherwise.
func ChooseCorrelationID(usePaymentID bool, paymentID, attemptID string) string {
	if usePaymentID {
		return paymentID
	}
	return attemptID
}

func invalidIDFormat(key string) error {
	return gatewaydomain.InvalidDataFormatError{
		Field:    key,
		Expected: fmt.Sprintf("length should be less than %d characters", MaxIDLength),
	}
}

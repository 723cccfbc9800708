package payme

import (
	"github.com/smallbiznis/payrail/internal/gateway/domain"
)

// PaymentMethod is the orchestrator-side payment method vocabulary.
type PaymentMethod string

const (
	MethodCard         PaymentMethod = "card"
	MethodWallet       PaymentMethod = "wallet"
	MethodPayLater     PaymentMethod = "pay_later"
	MethodBankRedirect PaymentMethod = "bank_redirect"
	MethodBankDebit    PaymentMethod = "bank_debit"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCrypto       PaymentMethod = "crypto"
)

// SalePaymentMethod is the gateway-side method vocabulary. Only card
// payments are supported.
type SalePaymentMethod string

const SalePaymentMethodCreditCard SalePaymentMethod = "credit-card"

func SalePaymentMethodOf(method PaymentMethod) (SalePaymentMethod, error) {
	if method == MethodCard {
		return SalePaymentMethodCreditCard, nil
	}
	return "", domain.NotImplementedError{Message: "payment method " + string(method)}
}

// SaleType selects how a sale is initiated.
type SaleType string

const (
	SaleTypeSale      SaleType = "sale"
	SaleTypeAuthorize SaleType = "authorize"
	SaleTypeToken     SaleType = "token"
)

// SaleTypeFor picks the sale type: a first mandate setup tokenizes, an
// auto-capture payment sells, everything else authorizes.
func SaleTypeFor(setupMandate, autoCapture bool) SaleType {
	if setupMandate {
		return SaleTypeToken
	}
	if autoCapture {
		return SaleTypeSale
	}
	return SaleTypeAuthorize
}

package payme

import (
	"errors"
	"testing"

	"github.com/smallbiznis/payrail/internal/gateway/domain"
)

func TestAuthTypeFromBodyKey(t *testing.T) {
	auth, err := AuthTypeFrom(map[string]any{
		"api_key": "seller-1",
		"key1":    "client-1",
	})
	if err != nil {
		t.Fatalf("auth: %v", err)
	}
	if auth.SellerPaymeID != "seller-1" || auth.PaymeClientKey != "client-1" {
		t.Fatalf("unexpected auth %+v", auth)
	}
}

func TestAuthTypeRejectsWrongShape(t *testing.T) {
	for _, config := range []map[string]any{
		{},
		{"api_key": "seller-1"},
		{"api_key": 42, "key1": "client-1"},
		{"api_key": "", "key1": "client-1"},
	} {
		if _, err := AuthTypeFrom(config); !errors.Is(err, domain.ErrFailedToObtainAuthType) {
			t.Fatalf("config %v: expected auth type failure, got %v", config, err)
		}
	}
}

func TestSalePaymentMethodGating(t *testing.T) {
	method, err := SalePaymentMethodOf(MethodCard)
	if err != nil {
		t.Fatalf("card: %v", err)
	}
	if method != SalePaymentMethodCreditCard {
		t.Fatalf("expected credit-card, got %q", method)
	}

	var notImplemented domain.NotImplementedError
	if _, err := SalePaymentMethodOf(MethodWallet); !errors.As(err, &notImplemented) {
		t.Fatalf("expected not implemented, got %v", err)
	}
}

func TestSaleTypeSelection(t *testing.T) {
	if got := SaleTypeFor(true, true); got != SaleTypeToken {
		t.Fatalf("mandate setup must tokenize, got %q", got)
	}
	if got := SaleTypeFor(false, true); got != SaleTypeSale {
		t.Fatalf("auto capture must sell, got %q", got)
	}
	if got := SaleTypeFor(false, false); got != SaleTypeAuthorize {
		t.Fatalf("manual capture must authorize, got %q", got)
	}
}

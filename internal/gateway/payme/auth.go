package payme

import (
	"strings"

	"github.com/smallbiznis/payrail/internal/gateway/domain"
)

// AuthType holds the seller credentials for this gateway.
type AuthType struct {
	SellerPaymeID  string
	PaymeClientKey string
}

// AuthTypeFrom extracts credentials from a provider config map. The
// gateway uses the body-key shape: api_key is the seller id, key1 the
// client key. Any other shape is a configuration error.
func AuthTypeFrom(config map[string]any) (AuthType, error) {
	apiKey, ok := config["api_key"].(string)
	if !ok {
		return AuthType{}, domain.ErrFailedToObtainAuthType
	}
	key1, ok := config["key1"].(string)
	if !ok {
		return AuthType{}, domain.ErrFailedToObtainAuthType
	}
	auth := AuthType{
		SellerPaymeID:  strings.TrimSpace(apiKey),
		PaymeClientKey: strings.TrimSpace(key1),
	}
	if auth.SellerPaymeID == "" || auth.PaymeClientKey == "" {
		return AuthType{}, domain.ErrFailedToObtainAuthType
	}
	return auth, nil
}

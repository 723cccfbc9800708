package payme

import (
	"github.com/smallbiznis/payrail/internal/gateway/domain"
)

// PaySaleResponse is the direct sale reply, also the shape webhook events
// project into so the record builder never branches on delivery path.
type PaySaleResponse struct {
	SaleStatus         domain.SaleStatus `json:"sale_status"`
	PaymeSaleID        string            `json:"payme_sale_id"`
	PaymeTransactionID string            `json:"payme_transaction_id"`
	BuyerKey           *string           `json:"buyer_key,omitempty"`
}

// SaleQuery is one element of a sale-query reply.
type SaleQuery struct {
	SaleStatus  domain.SaleStatus `json:"sale_status"`
	SalePaymeID string            `json:"sale_payme_id"`
}

// SaleQueryResponse wraps the sale-query collection. Only one element is
// expected since the query carries a single transaction id.
type SaleQueryResponse struct {
	Items []SaleQuery `json:"items"`
}

// TransactionQuery is one element of a transaction-query (refund) reply.
type TransactionQuery struct {
	SaleStatus         domain.SaleStatus `json:"sale_status"`
	PaymeTransactionID string            `json:"payme_transaction_id"`
}

// TransactionQueryResponse wraps the refund-query collection.
type TransactionQueryResponse struct {
	Items []TransactionQuery `json:"items"`
}

// RefundResponse is the direct refund-execution reply.
type RefundResponse struct {
	SaleStatus         domain.SaleStatus `json:"sale_status"`
	PaymeTransactionID string            `json:"payme_transaction_id"`
}

// ErrorResponse is the gateway's error body.
type ErrorResponse struct {
	StatusCode int     `json:"status_code"`
	Code       string  `json:"code"`
	Message    string  `json:"message"`
	Reason     *string `json:"reason,omitempty"`
}

package payme

import (
	"encoding/json"
	"fmt"

	"github.com/smallbiznis/payrail/internal/gateway/domain"
)

// Candidate shapes are tried most-specific-first and must stay disjoint by
// required-field presence: the flat sale reply requires payme_sale_id and
// payme_transaction_id at the top level, the query replies require items.
// A payload carrying both would resolve as the flat shape by priority; no
// such payload is produced by the gateway today.

// ResolvePayment resolves a synchronous payment reply into an envelope.
func ResolvePayment(payload []byte) (domain.Envelope, error) {
	if sale, ok := parsePaySale(payload); ok {
		return domain.Envelope{
			Kind:          domain.EntityAttempt,
			Path:          domain.PathQuery,
			SaleStatus:    sale.SaleStatus,
			ResourceID:    sale.PaymeSaleID,
			TransactionID: sale.PaymeTransactionID,
			MandateToken:  sale.BuyerKey,
		}, nil
	}
	if query, ok := parseSaleQuery(payload); ok {
		if len(query.Items) == 0 {
			return domain.Envelope{}, fmt.Errorf("sale query returned no items: %w", domain.ErrResponseHandlingFailed)
		}
		first := query.Items[0]
		return domain.Envelope{
			Kind:       domain.EntityAttempt,
			Path:       domain.PathQuery,
			SaleStatus: first.SaleStatus,
			ResourceID: first.SalePaymeID,
		}, nil
	}
	return domain.Envelope{}, fmt.Errorf("no payment candidate shape matched: %w", domain.ErrResponseHandlingFailed)
}

// ResolveRefund resolves a synchronous refund reply into an envelope.
func ResolveRefund(payload []byte) (domain.Envelope, error) {
	if query, ok := parseTransactionQuery(payload); ok {
		if len(query.Items) == 0 {
			return domain.Envelope{}, fmt.Errorf("transaction query returned no items: %w", domain.ErrResponseHandlingFailed)
		}
		first := query.Items[0]
		return domain.Envelope{
			Kind:       domain.EntityRefund,
			Path:       domain.PathQuery,
			SaleStatus: first.SaleStatus,
			ResourceID: first.PaymeTransactionID,
		}, nil
	}
	if refund, ok := parseRefund(payload); ok {
		return domain.Envelope{
			Kind:       domain.EntityRefund,
			Path:       domain.PathQuery,
			SaleStatus: refund.SaleStatus,
			ResourceID: refund.PaymeTransactionID,
		}, nil
	}
	return domain.Envelope{}, fmt.Errorf("no refund candidate shape matched: %w", domain.ErrResponseHandlingFailed)
}

// ParseErrorResponse probes for the gateway's error body. Error replies
// carry code and message and none of the success-shape required fields.
func ParseErrorResponse(payload []byte) (ErrorResponse, bool) {
	var probe struct {
		StatusCode *int    `json:"status_code"`
		Code       *string `json:"code"`
		Message    *string `json:"message"`
		Reason     *string `json:"reason"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return ErrorResponse{}, false
	}
	if probe.Code == nil || probe.Message == nil {
		return ErrorResponse{}, false
	}
	resp := ErrorResponse{
		Code:    *probe.Code,
		Message: *probe.Message,
		Reason:  probe.Reason,
	}
	if probe.StatusCode != nil {
		resp.StatusCode = *probe.StatusCode
	}
	return resp, true
}

func parsePaySale(payload []byte) (PaySaleResponse, bool) {
	var probe struct {
		SaleStatus         *domain.SaleStatus `json:"sale_status"`
		PaymeSaleID        *string            `json:"payme_sale_id"`
		PaymeTransactionID *string            `json:"payme_transaction_id"`
		BuyerKey           *string            `json:"buyer_key"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return PaySaleResponse{}, false
	}
	if probe.SaleStatus == nil || probe.PaymeSaleID == nil || probe.PaymeTransactionID == nil {
		return PaySaleResponse{}, false
	}
	return PaySaleResponse{
		SaleStatus:         *probe.SaleStatus,
		PaymeSaleID:        *probe.PaymeSaleID,
		PaymeTransactionID: *probe.PaymeTransactionID,
		BuyerKey:           probe.BuyerKey,
	}, true
}

func parseSaleQuery(payload []byte) (SaleQueryResponse, bool) {
	var probe struct {
		Items *[]SaleQuery `json:"items"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return SaleQueryResponse{}, false
	}
	if probe.Items == nil {
		return SaleQueryResponse{}, false
	}
	for _, item := range *probe.Items {
		if item.SalePaymeID == "" {
			return SaleQueryResponse{}, false
		}
	}
	return SaleQueryResponse{Items: *probe.Items}, true
}

func parseTransactionQuery(payload []byte) (TransactionQueryResponse, bool) {
	var probe struct {
		Items *[]TransactionQuery `json:"items"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return TransactionQueryResponse{}, false
	}
	if probe.Items == nil {
		return TransactionQueryResponse{}, false
	}
	for _, item := range *probe.Items {
		if item.PaymeTransactionID == "" {
			return TransactionQueryResponse{}, false
		}
	}
	return TransactionQueryResponse{Items: *probe.Items}, true
}

func parseRefund(payload []byte) (RefundResponse, bool) {
	var probe struct {
		SaleStatus         *domain.SaleStatus `json:"sale_status"`
		PaymeTransactionID *string            `json:"payme_transaction_id"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return RefundResponse{}, false
	}
	if probe.SaleStatus == nil || probe.PaymeTransactionID == nil {
		return RefundResponse{}, false
	}
	return RefundResponse{
		SaleStatus:         *probe.SaleStatus,
		PaymeTransactionID: *probe.PaymeTransactionID,
	}, true
}

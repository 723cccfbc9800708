package payme

import (
	"encoding/json"
	"fmt"

	disputedomain "github.com/smallbiznis/payrail/internal/dispute/domain"
	"github.com/smallbiznis/payrail/internal/gateway/domain"
)

// NotifyType is the webhook event vocabulary.
type NotifyType string

const (
	NotifySaleComplete         NotifyType = "sale-complete"
	NotifySaleAuthorized       NotifyType = "sale-authorized"
	NotifyRefund               NotifyType = "refund"
	NotifySaleFailure          NotifyType = "sale-failure"
	NotifySaleChargeback       NotifyType = "sale-chargeback"
	NotifySaleChargebackRefund NotifyType = "sale-chargeback-refund"
)

func (n *NotifyType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch NotifyType(raw) {
	case NotifySaleComplete, NotifySaleAuthorized, NotifyRefund,
		NotifySaleFailure, NotifySaleChargeback, NotifySaleChargebackRefund:
		*n = NotifyType(raw)
		return nil
	}
	return fmt.Errorf("unknown notify type %q: %w", raw, domain.ErrResponseHandlingFailed)
}

// WebhookEvent is the gateway's asynchronous push body. The signature is
// carried for the transport layer to verify; this package never checks it.
type WebhookEvent struct {
	SaleStatus         domain.SaleStatus `json:"sale_status"`
	PaymeSignature     string            `json:"payme_signature"`
	BuyerKey           *string           `json:"buyer_key,omitempty"`
	NotifyType         NotifyType        `json:"notify_type"`
	PaymeSaleID        string            `json:"payme_sale_id"`
	PaymeTransactionID string            `json:"payme_transaction_id"`
}

// ParseWebhookEvent decodes and validates the push body.
func ParseWebhookEvent(payload []byte) (WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return WebhookEvent{}, fmt.Errorf("webhook body did not parse: %w", domain.ErrResponseHandlingFailed)
	}
	if event.NotifyType == "" || event.PaymeSaleID == "" || event.PaymeTransactionID == "" {
		return WebhookEvent{}, fmt.Errorf("webhook body missing required fields: %w", domain.ErrResponseHandlingFailed)
	}
	return event, nil
}

// PaySale projects the push body into the synchronous sale-reply shape.
func (e WebhookEvent) PaySale() PaySaleResponse {
	return PaySaleResponse{
		SaleStatus:         e.SaleStatus,
		PaymeSaleID:        e.PaymeSaleID,
		PaymeTransactionID: e.PaymeTransactionID,
		BuyerKey:           e.BuyerKey,
	}
}

// TransactionQuery projects the push body into the refund-query shape.
func (e WebhookEvent) TransactionQuery() TransactionQueryResponse {
	return TransactionQueryResponse{
		Items: []TransactionQuery{{
			SaleStatus:         e.SaleStatus,
			PaymeTransactionID: e.PaymeTransactionID,
		}},
	}
}

// Kind maps the notify type onto the entity the event updates.
func (e WebhookEvent) Kind() domain.EntityKind {
	switch e.NotifyType {
	case NotifyRefund:
		return domain.EntityRefund
	case NotifySaleChargeback, NotifySaleChargebackRefund:
		return domain.EntityDispute
	default:
		return domain.EntityAttempt
	}
}

// DisputeState returns the lifecycle state a chargeback event proposes.
// A chargeback opens the dispute stage; a chargeback refund means the
// funds came back, which we treat as the dispute being won.
func (e WebhookEvent) DisputeState() (disputedomain.State, bool) {
	switch e.NotifyType {
	case NotifySaleChargeback:
		return disputedomain.State{Stage: disputedomain.StageDispute, Status: disputedomain.StatusOpened}, true
	case NotifySaleChargebackRefund:
		return disputedomain.State{Stage: disputedomain.StageDispute, Status: disputedomain.StatusWon}, true
	}
	return disputedomain.State{}, false
}

// ResolveWebhook resolves a push body into the same envelope shape the
// synchronous replies produce. This is the only path that carries the
// mandate token forward.
func ResolveWebhook(payload []byte) (domain.Envelope, error) {
	event, err := ParseWebhookEvent(payload)
	if err != nil {
		return domain.Envelope{}, err
	}
	return event.Envelope(), nil
}

// Envelope normalizes the event through the synchronous reply shapes so
// downstream merging never branches on delivery path.
func (e WebhookEvent) Envelope() domain.Envelope {
	event := e
	env := domain.Envelope{
		Kind:          event.Kind(),
		Path:          domain.PathWebhook,
		SaleStatus:    event.SaleStatus,
		MandateToken:  event.BuyerKey,
		TransactionID: event.PaymeTransactionID,
	}
	switch env.Kind {
	case domain.EntityRefund:
		first := event.TransactionQuery().Items[0]
		env.SaleStatus = first.SaleStatus
		env.ResourceID = first.PaymeTransactionID
		env.TransactionID = ""
	default:
		sale := event.PaySale()
		env.SaleStatus = sale.SaleStatus
		env.ResourceID = sale.PaymeSaleID
		env.TransactionID = sale.PaymeTransactionID
	}
	if state, ok := event.DisputeState(); ok {
		env.Dispute = &state
	}
	return env
}

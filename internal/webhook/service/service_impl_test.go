package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/smallbiznis/payrail/internal/cache"
	"github.com/smallbiznis/payrail/internal/clock"
	"github.com/smallbiznis/payrail/internal/config"
	disputedomain "github.com/smallbiznis/payrail/internal/dispute/domain"
	gatewaydomain "github.com/smallbiznis/payrail/internal/gateway/domain"
	"github.com/smallbiznis/payrail/internal/observability/metrics"
	recorddomain "github.com/smallbiznis/payrail/internal/record/domain"
	recordrepo "github.com/smallbiznis/payrail/internal/record/repository"
	webhookdomain "github.com/smallbiznis/payrail/internal/webhook/domain"
	webhookrepo "github.com/smallbiznis/payrail/internal/webhook/repository"
)

func TestIngestWebhookAppliesSaleComplete(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, reg := setupService(t, db)

	insertAttempt(t, db, "merchant-1", "pay_ingest_1", "sale-ingest-1")

	payload := []byte(`{
		"notify_type": "sale-complete",
		"sale_status": "completed",
		"payme_sale_id": "sale-ingest-1",
		"payme_transaction_id": "txn-ingest-1",
		"payme_signature": "sig",
		"buyer_key": "tok_ingest_1"
	}`)
	if err := svc.IngestWebhook(context.Background(), "payme", payload, http.Header{}); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	record := reloadByResource(t, db, "sale-ingest-1")
	if record.AttemptStatus != gatewaydomain.AttemptStatusCharged {
		t.Fatalf("expected charged, got %q", record.AttemptStatus)
	}
	if record.MandateRef == nil || *record.MandateRef != "tok_ingest_1" {
		t.Fatalf("expected mandate reference applied, got %v", record.MandateRef)
	}
	var meta map[string]string
	if err := json.Unmarshal(record.Metadata, &meta); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta["payme_transaction_id"] != "txn-ingest-1" {
		t.Fatalf("expected transaction id in metadata, got %v", meta)
	}
	if got := counterValue(t, reg, "payrail_webhooks_processed_total", "applied"); got != 1 {
		t.Fatalf("expected 1 applied delivery, got %v", got)
	}
}

func TestIngestWebhookDuplicateDelivery(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, reg := setupService(t, db)

	insertAttempt(t, db, "merchant-1", "pay_dup_1", "sale-dup-1")

	payload := []byte(`{
		"notify_type": "sale-complete",
		"sale_status": "completed",
		"payme_sale_id": "sale-dup-1",
		"payme_transaction_id": "txn-dup-1",
		"payme_signature": "sig"
	}`)
	if err := svc.IngestWebhook(context.Background(), "payme", payload, http.Header{}); err != nil {
		t.Fatalf("first delivery: %v", err)
	}

	err := svc.IngestWebhook(context.Background(), "payme", payload, http.Header{})
	if !errors.Is(err, webhookdomain.ErrEventAlreadyProcessed) {
		t.Fatalf("expected already processed, got %v", err)
	}
	if got := counterValue(t, reg, "payrail_webhooks_processed_total", "duplicate"); got != 1 {
		t.Fatalf("expected 1 duplicate delivery, got %v", got)
	}
}

func TestIngestWebhookStaleDisputeDiscarded(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, reg := setupService(t, db)

	node := newTestNode(t)
	record := recorddomain.Record{
		ID:            node.Generate(),
		MerchantID:    "merchant-1",
		PaymentID:     "pay_stale_1",
		AttemptID:     "att_stale_1",
		Connector:     webhookdomain.ProviderPayme,
		Kind:          gatewaydomain.EntityDispute,
		AttemptStatus: gatewaydomain.AttemptStatusAutoRefunded,
		ResourceID:    "sale-stale-1",
		DisputeStage:  disputedomain.StageDispute,
		DisputeStatus: disputedomain.StatusWon,
	}
	if err := db.Create(&record).Error; err != nil {
		t.Fatalf("insert record: %v", err)
	}

	payload := []byte(`{
		"notify_type": "sale-chargeback",
		"sale_status": "chargeback",
		"payme_sale_id": "sale-stale-1",
		"payme_transaction_id": "txn-stale-1",
		"payme_signature": "sig"
	}`)
	err := svc.IngestWebhook(context.Background(), "payme", payload, http.Header{})
	if !errors.Is(err, disputedomain.ErrWebhookValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}

	reloaded := reloadByResource(t, db, "sale-stale-1")
	if reloaded.DisputeStatus != disputedomain.StatusWon {
		t.Fatalf("expected stored state untouched, got %q", reloaded.DisputeStatus)
	}
	if got := counterValue(t, reg, "payrail_dispute_webhook_validation_failures_total", ""); got != 1 {
		t.Fatalf("expected 1 validation failure, got %v", got)
	}
	if got := counterValue(t, reg, "payrail_webhooks_processed_total", "discarded"); got != 1 {
		t.Fatalf("expected 1 discarded delivery, got %v", got)
	}
}

func TestIngestWebhookRejectsUnknownProvider(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, _ := setupService(t, db)

	err := svc.IngestWebhook(context.Background(), "stripe", []byte(`{}`), http.Header{})
	if !errors.Is(err, webhookdomain.ErrInvalidProvider) {
		t.Fatalf("expected invalid provider, got %v", err)
	}
}

func TestApplyPaymentSyncKeepsMandateUntouched(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, _ := setupService(t, db)

	insertAttempt(t, db, "merchant-1", "pay_sync_1", "sale-sync-1")

	payload := []byte(`{
		"sale_status": "completed",
		"payme_sale_id": "sale-sync-1",
		"payme_transaction_id": "txn-sync-1",
		"buyer_key": "tok_sync_1"
	}`)
	merged, err := svc.ApplyPaymentSync(context.Background(), "pay_sync_1", payload)
	if err != nil {
		t.Fatalf("payment sync: %v", err)
	}
	if merged.AttemptStatus != gatewaydomain.AttemptStatusCharged {
		t.Fatalf("expected charged, got %q", merged.AttemptStatus)
	}
	if merged.MandateRef != nil {
		t.Fatalf("query replies must not carry the mandate token, got %v", *merged.MandateRef)
	}
}

func TestApplyPaymentSyncRecordsGatewayError(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, _ := setupService(t, db)

	insertAttempt(t, db, "merchant-1", "pay_err_1", "sale-err-1")

	payload := []byte(`{"status_code":400,"code":"sale-failed","message":"card declined"}`)
	merged, err := svc.ApplyPaymentSync(context.Background(), "pay_err_1", payload)
	if err != nil {
		t.Fatalf("payment sync: %v", err)
	}
	if merged.AttemptStatus != gatewaydomain.AttemptStatusFailure {
		t.Fatalf("expected failure, got %q", merged.AttemptStatus)
	}
	if merged.ErrorCode == nil || *merged.ErrorCode != "sale-failed" {
		t.Fatalf("expected error code recorded, got %v", merged.ErrorCode)
	}
	if merged.ErrorMessage == nil || *merged.ErrorMessage != "card declined" {
		t.Fatalf("expected error message recorded, got %v", merged.ErrorMessage)
	}
}

func TestApplyRefundSyncRequiresGatewayID(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, _ := setupService(t, db)

	node := newTestNode(t)
	record := recorddomain.Record{
		ID:         node.Generate(),
		MerchantID: "merchant-1",
		PaymentID:  "pay_refund_1",
		AttemptID:  "att_refund_1",
		Connector:  webhookdomain.ProviderPayme,
		Kind:       gatewaydomain.EntityRefund,
	}
	if err := db.Create(&record).Error; err != nil {
		t.Fatalf("insert record: %v", err)
	}

	_, err := svc.ApplyRefundSync(context.Background(), "pay_refund_1", []byte(`{"sale_status":"refunded","payme_transaction_id":"txn-r"}`))
	var missing gatewaydomain.MissingCorrelationIDError
	if !errors.As(err, &missing) {
		t.Fatalf("expected missing correlation id, got %v", err)
	}
}

func TestInitiatePayment(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, _ := setupService(t, db)

	record, err := svc.InitiatePayment(context.Background(), webhookdomain.InitiateRequest{
		MerchantID: "merchant-init",
		Method:     "card",
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if record.PaymentID == "" || record.AttemptID == "" {
		t.Fatalf("expected generated ids, got %q / %q", record.PaymentID, record.AttemptID)
	}
	if record.AttemptStatus != gatewaydomain.AttemptStatusAuthorizing {
		t.Fatalf("expected authorizing, got %q", record.AttemptStatus)
	}

	_, err = svc.InitiatePayment(context.Background(), webhookdomain.InitiateRequest{
		MerchantID: "merchant-init",
		Method:     "wallet",
	})
	var notImpl gatewaydomain.NotImplementedError
	if !errors.As(err, &notImpl) {
		t.Fatalf("expected not implemented, got %v", err)
	}
}

func TestGetPayment(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, _ := setupService(t, db)

	insertAttempt(t, db, "merchant-1", "pay_get_1", "sale-get-1")

	record, err := svc.GetPayment(context.Background(), "pay_get_1")
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if record.PaymentID != "pay_get_1" {
		t.Fatalf("expected pay_get_1, got %q", record.PaymentID)
	}

	if _, err := svc.GetPayment(context.Background(), "pay_get_missing"); !errors.Is(err, webhookdomain.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	byResource, err := svc.GetByResourceID(context.Background(), "sale-get-1")
	if err != nil {
		t.Fatalf("get by resource id: %v", err)
	}
	if byResource.PaymentID != "pay_get_1" {
		t.Fatalf("expected same record, got %q", byResource.PaymentID)
	}
}

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&recorddomain.Record{}, &webhookdomain.EventRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func setupService(t *testing.T, db *gorm.DB) (webhookdomain.Service, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.NewDisputeMetrics(reg, metrics.Config{ServiceName: "payrail-test", Environment: "test"})

	svc, err := NewService(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   newTestNode(t),
		Clock:   clock.SystemClock{},
		Recent:  cache.NewTTLCache[string, struct{}](),
		Events:  webhookrepo.Provide(),
		Records: recordrepo.Provide(),
		Builder: recorddomain.NewBuilder(disputedomain.NewValidator(m)),
		Metrics: m,
		Cfg: config.Config{
			SellerPaymeID:  "seller-1",
			PaymeClientKey: "client-key-1",
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, reg
}

func newTestNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func insertAttempt(t *testing.T, db *gorm.DB, merchantID, paymentID, resourceID string) {
	t.Helper()
	node := newTestNode(t)
	record := recorddomain.New(node.Generate(), merchantID, paymentID, "att_"+paymentID, webhookdomain.ProviderPayme, gatewaydomain.EntityAttempt)
	record.ResourceID = resourceID
	if err := db.Create(&record).Error; err != nil {
		t.Fatalf("insert record: %v", err)
	}
}

func reloadByResource(t *testing.T, db *gorm.DB, resourceID string) recorddomain.Record {
	t.Helper()
	var record recorddomain.Record
	if err := db.Where("resource_id = ?", resourceID).First(&record).Error; err != nil {
		t.Fatalf("reload record: %v", err)
	}
	return record
}

// counterValue reads one counter from an isolated registry; result selects
// the labeled series, empty means the metric has no variable labels.
func counterValue(t *testing.T, reg *prometheus.Registry, name, result string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if result == "" {
				return metric.GetCounter().GetValue()
			}
			for _, label := range metric.GetLabel() {
				if label.GetName() == "result" && label.GetValue() == result {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

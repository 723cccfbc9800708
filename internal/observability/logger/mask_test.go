package logger

import (
	"net/http"
	"testing"
)

func TestMaskSignature(t *testing.T) {
	got := MaskSignature("sig_abcdef1234")
	want := "****1234"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMaskTokenShortValue(t *testing.T) {
	got := MaskToken("abc")
	want := "****abc"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMaskHeaders(t *testing.T) {
	headers := http.Header{
		"Payme_Signature": {"sig_abcdef1234"},
	}
	headers.Set("Content-Type", "application/json")

	masked := MaskHeaders(headers)
	if masked["Payme_Signature"] != "****1234" {
		t.Fatalf("expected masked signature, got %q", masked["Payme_Signature"])
	}
	if masked["Content-Type"] != "application/json" {
		t.Fatalf("expected content type untouched, got %q", masked["Content-Type"])
	}
}

func TestMaskJSON(t *testing.T) {
	input := map[string]any{
		"buyer_key":          "tok_12345678",
		"credit_card_number": "4111111111111111",
		"nested": map[string]any{
			"key1": "client_key_9876",
		},
		"sale_status": "completed",
	}
	masked := MaskJSON(input)
	if masked["buyer_key"] != "****5678" {
		t.Fatalf("expected masked buyer_key, got %v", masked["buyer_key"])
	}
	if masked["credit_card_number"] != "****1111" {
		t.Fatalf("expected masked card number, got %v", masked["credit_card_number"])
	}
	nested, ok := masked["nested"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested map")
	}
	if nested["key1"] != "****9876" {
		t.Fatalf("expected masked key1, got %v", nested["key1"])
	}
	if masked["sale_status"] != "completed" {
		t.Fatalf("expected sale_status untouched, got %v", masked["sale_status"])
	}
}

package payment

import (
	"encoding/json"
	"testing"
)

func TestVerifyRequestAcceptsBothSpellings(t *testing.T) {
	snake := []byte(`{
		"transaction_id": 5,
		"razorpay_order_id": "order_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature": "sig_1"
	}`)
	camel := []byte(`{
		"transactionId": 5,
		"razorpayOrderId": "order_1",
		"razorpayPaymentId": "pay_1",
		"razorpaySignature": "sig_1"
	}`)

	for name, payload := range map[string][]byte{"snake_case": snake, "camelCase": camel} {
		var req VerifyRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			t.Fatalf("%s: %v", name, err)
		}

		if got := coalesceUint(req.TransactionID, req.TransactionIDAlias); got != 5 {
			t.Errorf("%s: transaction id = %d, want 5", name, got)
		}
		if got := coalesce(req.OrderID, req.OrderIDAlias); got != "order_1" {
			t.Errorf("%s: order id = %s, want order_1", name, got)
		}
		if got := coalesce(req.PaymentID, req.PaymentIDAlias); got != "pay_1" {
			t.Errorf("%s: payment id = %s, want pay_1", name, got)
		}
		if got := coalesce(req.Signature, req.SignatureAlias); got != "sig_1" {
			t.Errorf("%s: signature = %s, want sig_1", name, got)
		}
	}
}

func TestCoalescePrefersCanonicalSpelling(t *testing.T) {
	var req VerifyRequest
	payload := []byte(`{"razorpay_payment_id": "pay_snake", "razorpayPaymentId": "pay_camel"}`)
	if err := json.Unmarshal(payload, &req); err != nil {
		t.Fatal(err)
	}
	if got := coalesce(req.PaymentID, req.PaymentIDAlias); got != "pay_snake" {
		t.Errorf("payment id = %s, want snake_case value to win", got)
	}
}

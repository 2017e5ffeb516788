package razorpay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/courseflow/api/services/payments"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Config{
		KeyID:     "rzp_test_key",
		KeySecret: "test_secret",
		BaseURL:   server.URL,
	})
	return client, server
}

func TestCreateOrder(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "order_test_1",
			"amount":   149900,
			"currency": "INR",
			"receipt":  "receipt_order_1_123",
			"status":   "created",
		})
	})

	order, err := client.CreateOrder(context.Background(), payments.OrderRequest{
		Amount:   149900,
		Currency: "INR",
		Receipt:  "receipt_order_1_123",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if gotPath != "/orders" {
		t.Errorf("path = %s, want /orders", gotPath)
	}

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("rzp_test_key:test_secret"))
	if gotAuth != wantAuth {
		t.Errorf("auth header = %s, want basic auth with key credentials", gotAuth)
	}

	if gotBody["amount"].(float64) != 149900 {
		t.Errorf("request amount = %v, want 149900", gotBody["amount"])
	}
	if gotBody["currency"] != "INR" {
		t.Errorf("request currency = %v, want INR", gotBody["currency"])
	}

	if order.ID != "order_test_1" {
		t.Errorf("order id = %s", order.ID)
	}
	if order.Amount != 149900 {
		t.Errorf("order amount = %d", order.Amount)
	}
	if order.Receipt != "receipt_order_1_123" {
		t.Errorf("order receipt = %s", order.Receipt)
	}
}

func TestFetchPayment(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payments/pay_abc" {
			t.Errorf("path = %s, want /payments/pay_abc", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "pay_abc",
			"order_id": "order_test_1",
			"status":   "captured",
			"amount":   149900,
			"method":   "upi",
			"email":    "asha@example.com",
			"contact":  "9999999999",
		})
	})

	payment, err := client.FetchPayment(context.Background(), "pay_abc")
	if err != nil {
		t.Fatalf("FetchPayment: %v", err)
	}

	if payment.Status != payments.GatewayStatusCaptured {
		t.Errorf("status = %s, want captured", payment.Status)
	}
	if payment.OrderID != "order_test_1" {
		t.Errorf("order id = %s", payment.OrderID)
	}
	if payment.Method != "upi" {
		t.Errorf("method = %s", payment.Method)
	}
}

func TestAPIErrorMapping(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{
				"code":        "BAD_REQUEST_ERROR",
				"description": "The amount must be at least INR 1.00",
			},
		})
	})

	_, err := client.CreateOrder(context.Background(), payments.OrderRequest{Amount: 1})
	if !errors.Is(err, payments.ErrGatewayUnavailable) {
		t.Fatalf("err = %v, want ErrGatewayUnavailable", err)
	}
	if got := err.Error(); !strings.Contains(got, "BAD_REQUEST_ERROR") || !strings.Contains(got, "at least INR 1.00") {
		t.Errorf("error lost API detail: %s", got)
	}
}

func TestNonJSONErrorBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>Bad Gateway</html>"))
	})

	_, err := client.FetchPayment(context.Background(), "pay_abc")
	if !errors.Is(err, payments.ErrGatewayUnavailable) {
		t.Fatalf("err = %v, want ErrGatewayUnavailable", err)
	}
}

func TestTimeoutMapsToGatewayTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(Config{
		KeyID:     "rzp_test_key",
		KeySecret: "test_secret",
		BaseURL:   server.URL,
		Timeout:   20 * time.Millisecond,
	})

	_, err := client.FetchPayment(context.Background(), "pay_abc")
	if !errors.Is(err, payments.ErrGatewayTimeout) {
		t.Fatalf("err = %v, want ErrGatewayTimeout", err)
	}
}

func TestContextDeadlineMapsToGatewayTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(Config{
		KeyID:     "rzp_test_key",
		KeySecret: "test_secret",
		BaseURL:   server.URL,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.FetchPayment(ctx, "pay_abc")
	if !errors.Is(err, payments.ErrGatewayTimeout) {
		t.Fatalf("err = %v, want ErrGatewayTimeout", err)
	}
}

func TestConnectionRefusedMapsToUnavailable(t *testing.T) {
	client := NewClient(Config{
		KeyID:     "rzp_test_key",
		KeySecret: "test_secret",
		BaseURL:   "http://127.0.0.1:1", // nothing listens here
		Timeout:   500 * time.Millisecond,
	})

	_, err := client.FetchPayment(context.Background(), "pay_abc")
	if err == nil {
		t.Fatal("expected error for unreachable gateway")
	}
	if !errors.Is(err, payments.ErrGatewayUnavailable) && !errors.Is(err, payments.ErrGatewayTimeout) {
		t.Fatalf("err = %v, want a gateway error", err)
	}
}

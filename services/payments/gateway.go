package payments

import "context"

// Gateway payment statuses that count as a successful capture when settling
// via lookup.
const (
	GatewayStatusCaptured   = "captured"
	GatewayStatusAuthorized = "authorized"
)

// Currency is the only currency the system handles.
const Currency = "INR"

// OrderRequest is a request to create a gateway-side payment intent.
type OrderRequest struct {
	Amount   int64  // paise
	Currency string
	Receipt  string
}

// Order is a gateway-side payment intent.
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
}

// Payment is the gateway's view of a payment, returned by FetchPayment.
type Payment struct {
	ID      string
	OrderID string
	Status  string
	Amount  int64
	Method  string
	Email   string
	Contact string
}

// Gateway is the network boundary to the external payment provider. Both
// calls must be bounded by the context deadline or the implementation's own
// timeout; implementations map transport failures to ErrGatewayUnavailable
// or ErrGatewayTimeout.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
}

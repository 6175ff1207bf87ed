package gateway

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// PaymentDetail is the optional metadata the gateway reports for a captured
// payment.
type PaymentDetail struct {
	Method string `json:"method"`
	Bank   string `json:"bank"`
	Wallet string `json:"wallet"`
	VPA    string `json:"vpa"`
}

// Client is the payment-gateway collaborator. Implementations wrap an opaque
// external processor; callers treat every failure as retryable.
type Client interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]interface{}) (string, error)
	FetchPayment(ctx context.Context, paymentID string) (*PaymentDetail, error)
}

type RazorpayClient struct {
	client *razorpay.Client
}

func NewRazorpayClient(keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{client: razorpay.NewClient(keyID, keySecret)}
}

func (c *RazorpayClient) CreateOrder(_ context.Context, amount int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}

	body, err := c.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay order create: %w", err)
	}

	id, _ := body["id"].(string)
	if id == "" {
		return "", fmt.Errorf("razorpay order create: missing order id in response")
	}
	return id, nil
}

func (c *RazorpayClient) FetchPayment(_ context.Context, paymentID string) (*PaymentDetail, error) {
	body, err := c.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay payment fetch: %w", err)
	}

	return &PaymentDetail{
		Method: strField(body, "method"),
		Bank:   strField(body, "bank"),
		Wallet: strField(body, "wallet"),
		VPA:    strField(body, "vpa"),
	}, nil
}

func strField(m map[string]interface{}, key string) string {
	v, _ := m[key].(string)
	return v
}

package transport

import (
	"github.com/google/uuid"

	"github.com/campusprint/print-service/internal/models"
	"github.com/campusprint/print-service/internal/service"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

type CreatePaymentRequest struct {
	Amount   int64      `json:"amount"`
	Currency string     `json:"currency"`
	OrderID  *uuid.UUID `json:"order_id"`
	Receipt  string     `json:"receipt"`
}

type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type CreatePaymentResponse struct {
	Success bool            `json:"success"`
	Order   GatewayOrder    `json:"order"`
	KeyID   string          `json:"key_id"`
	Payment *models.Payment `json:"payment,omitempty"`
	// Persistence reports whether the local intent row was stored. "failed"
	// means the gateway order exists but the row does not; the client may
	// retry verification later or report the receipt to support.
	Persistence string `json:"persistence"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string     `json:"razorpay_order_id"`
	RazorpayPaymentID string     `json:"razorpay_payment_id"`
	RazorpaySignature string     `json:"razorpay_signature"`
	OrderID           *uuid.UUID `json:"order_id"`
}

type OrderLinkResult struct {
	Linked bool   `json:"linked"`
	Error  string `json:"error,omitempty"`
}

type VerifyPaymentResponse struct {
	Success   bool             `json:"success"`
	Payment   *models.Payment  `json:"payment"`
	OrderLink *OrderLinkResult `json:"order_link,omitempty"`
}

type Pagination struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
}

// Summary in PaymentHistoryResponse is computed over the returned page only,
// never over the user's full history.
type PaymentHistoryResponse struct {
	Success    bool                   `json:"success"`
	Payments   []models.Payment       `json:"payments"`
	Summary    service.HistorySummary `json:"summary"`
	Pagination Pagination             `json:"pagination"`
}

type SearchOrdersResponse struct {
	Total  int64          `json:"total"`
	Orders []models.Order `json:"orders"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/campusprint/print-service/internal/gateway"
	"github.com/campusprint/print-service/internal/models"
	"github.com/campusprint/print-service/pkg/logging"
)

// ReconcileService ties a verified external payment event to local payment
// and order state. Verification and order advancement are two steps, not one
// transaction: the gateway is the source of truth for money movement and is
// never rolled back once acknowledged. Order-side failures are surfaced in
// the result for administrative or scheduled retry.
type ReconcileService struct {
	Payments *PaymentService
	Orders   *OrderService
	Gateway  gateway.Client

	// KeySecret is the gateway shared secret used for signature
	// verification. Never logged.
	KeySecret []byte
}

// ConfirmResult reports per stage what happened. Payment is always the
// post-transition record when the payment side succeeded; OrderErr carries
// the link/advance failure, if any, without implying a payment rollback.
type ConfirmResult struct {
	Payment     *models.Payment
	OrderLinked bool
	OrderErr    error
}

func (s *ReconcileService) Confirm(ctx context.Context, userID uuid.UUID, gatewayOrderID, gatewayPaymentID, signature string, orderID *uuid.UUID) (*ConfirmResult, error) {
	l := logging.FromContext(ctx).With("svc", "reconcile.confirm", "gateway_order_id", gatewayOrderID)

	if gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" {
		return nil, fmt.Errorf("%w: missing payment verification parameters", ErrValidation)
	}

	if !VerifySignature(gatewayOrderID, gatewayPaymentID, signature, s.KeySecret) {
		// A mismatch is a normal negative verdict: the payment is marked
		// failed and the order is left untouched.
		if _, err := s.Payments.MarkFailed(ctx, gatewayOrderID, userID, "invalid signature"); err != nil {
			l.Warn("confirm_mark_failed_error", "error", err)
		}
		l.Warn("confirm_rejected", "status", 400, "reason", "signature mismatch")
		return nil, fmt.Errorf("%w: payment verification failed", ErrSignatureMismatch)
	}

	// Best effort: losing the metadata lookup must not block completion.
	detail, err := s.Gateway.FetchPayment(ctx, gatewayPaymentID)
	if err != nil {
		l.Warn("confirm_fetch_detail_error", "error", err)
		detail = nil
	}

	payment, err := s.Payments.MarkCompleted(ctx, gatewayOrderID, userID, gatewayPaymentID, signature, detail)
	if err != nil {
		return nil, err
	}

	result := &ConfirmResult{Payment: payment}

	if orderID != nil {
		result.OrderErr = s.attachToOrder(ctx, *orderID, payment)
		result.OrderLinked = result.OrderErr == nil
		if result.OrderErr != nil {
			// Payment stays completed; compensation is an administrative
			// task, not an automatic rollback.
			l.Warn("confirm_order_link_error", "order_id", orderID, "error", result.OrderErr)
		}
	}

	l.Info("confirm_success", "payment_id", payment.ID, "order_linked", result.OrderLinked)
	return result, nil
}

// attachToOrder runs linkPayment then advanceStatus(paid) as a sequential
// unit for this request. The repositories' conditional writes serialize
// concurrent attempts on the same order, so the loser fails cleanly with
// AlreadyLinked or InvalidStateTransition.
func (s *ReconcileService) attachToOrder(ctx context.Context, orderID uuid.UUID, payment *models.Payment) error {
	order, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order.UserID != payment.UserID {
		return fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}

	if err := s.Orders.LinkPayment(ctx, orderID, payment.ID); err != nil {
		return err
	}
	return s.Orders.AdvanceStatus(ctx, orderID, models.OrderStatusPaid)
}

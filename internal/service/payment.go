package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campusprint/print-service/internal/events"
	"github.com/campusprint/print-service/internal/gateway"
	"github.com/campusprint/print-service/internal/models"
	"github.com/campusprint/print-service/internal/repo"
	"github.com/campusprint/print-service/pkg/logging"
)

const defaultCurrency = "INR"

type PaymentService struct {
	Repo     *repo.PaymentRepo
	Gateway  gateway.Client
	Producer *events.Producer
}

// CreateIntentResult is deliberately composite: the gateway order can exist
// while the local row failed to persist. PersistErr reports that discrepancy
// instead of hiding it in a log line; the gateway action is never rolled
// back.
type CreateIntentResult struct {
	Payment        *models.Payment
	GatewayOrderID string
	PersistErr     error
}

func (s *PaymentService) CreateIntent(ctx context.Context, userID uuid.UUID, amount int64, currency string, orderID *uuid.UUID, receipt string) (*CreateIntentResult, error) {
	l := logging.FromContext(ctx).With("svc", "payment.create_intent", "user_id", userID)

	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than 0", ErrValidation)
	}
	if currency == "" {
		currency = defaultCurrency
	}
	currency = strings.ToUpper(currency)
	if receipt == "" {
		receipt = fmt.Sprintf("order_%d", time.Now().UnixMilli())
	}

	notes := map[string]interface{}{
		"user_id":    userID.String(),
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	if orderID != nil {
		notes["order_id"] = orderID.String()
	}

	gatewayOrderID, err := s.Gateway.CreateOrder(ctx, amount, currency, receipt, notes)
	if err != nil {
		l.Error("create_intent_error", "status", 502, "reason", "gateway order create failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	payment := &models.Payment{
		ID:             uuid.New(),
		UserID:         userID,
		OrderID:        orderID,
		Amount:         amount,
		Currency:       currency,
		Status:         models.PaymentStatusCreated,
		GatewayOrderID: gatewayOrderID,
		Receipt:        receipt,
	}

	if _, err := s.Repo.Create(ctx, payment); err != nil {
		// The gateway order exists; report the persistence gap instead of
		// pretending nothing happened.
		l.Error("create_intent_error", "status", 500, "reason", "gateway order created but not persisted",
			"gateway_order_id", gatewayOrderID, "error", err)
		return &CreateIntentResult{
			GatewayOrderID: gatewayOrderID,
			PersistErr:     fmt.Errorf("%w: %v", ErrPersistence, err),
		}, nil
	}

	l.Info("create_intent_success", "payment_id", payment.ID, "gateway_order_id", gatewayOrderID, "amount", amount)
	return &CreateIntentResult{Payment: payment, GatewayOrderID: gatewayOrderID}, nil
}

func (s *PaymentService) MarkFailed(ctx context.Context, gatewayOrderID string, userID uuid.UUID, reason string) (*models.Payment, error) {
	l := logging.FromContext(ctx).With("svc", "payment.mark_failed", "gateway_order_id", gatewayOrderID)

	payment, err := s.Repo.MarkFailed(ctx, gatewayOrderID, userID, reason)
	if err != nil {
		return nil, mapPaymentRepoErr(err)
	}

	s.publish(ctx, "payment_failed", payment)
	l.Info("mark_failed_success", "payment_id", payment.ID)
	return payment, nil
}

func (s *PaymentService) MarkCompleted(ctx context.Context, gatewayOrderID string, userID uuid.UUID, gatewayPaymentID, signature string, detail *gateway.PaymentDetail) (*models.Payment, error) {
	l := logging.FromContext(ctx).With("svc", "payment.mark_completed", "gateway_order_id", gatewayOrderID)

	now := time.Now().UTC()
	fields := map[string]any{
		"gateway_payment_id": gatewayPaymentID,
		"gateway_signature":  signature,
		"verified_at":        now,
	}
	if detail != nil {
		fields["method"] = detail.Method
		fields["bank"] = detail.Bank
		fields["wallet"] = detail.Wallet
		fields["vpa"] = detail.VPA
	}

	payment, err := s.Repo.MarkCompleted(ctx, gatewayOrderID, userID, fields)
	if err != nil {
		return nil, mapPaymentRepoErr(err)
	}

	s.publish(ctx, "payment_completed", payment)
	l.Info("mark_completed_success", "payment_id", payment.ID)
	return payment, nil
}

func (s *PaymentService) Get(ctx context.Context, paymentID, userID uuid.UUID) (*models.Payment, error) {
	payment, err := s.Repo.GetByID(ctx, paymentID, userID)
	if err != nil {
		return nil, mapPaymentRepoErr(err)
	}
	return payment, nil
}

// HistorySummary aggregates over the returned page ONLY. It is not a global
// total across the user's full payment history; callers paging through
// results must not sum summaries and present them as one.
type HistorySummary struct {
	TotalPayments     int    `json:"total_payments"`
	CompletedPayments int    `json:"completed_payments"`
	TotalSpent        int64  `json:"total_spent"`
	Currency          string `json:"currency"`
}

type HistoryPage struct {
	Payments []models.Payment
	Summary  HistorySummary
	Page     int
	PerPage  int
}

func (s *PaymentService) History(ctx context.Context, userID uuid.UUID, status string, page, limit int) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	payments, err := s.Repo.List(ctx, userID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	summary := HistorySummary{TotalPayments: len(payments), Currency: defaultCurrency}
	if len(payments) > 0 {
		summary.Currency = payments[0].Currency
	}
	for _, p := range payments {
		if p.Status == models.PaymentStatusCompleted {
			summary.CompletedPayments++
			summary.TotalSpent += p.Amount
		}
	}

	return &HistoryPage{
		Payments: payments,
		Summary:  summary,
		Page:     page,
		PerPage:  limit,
	}, nil
}

func (s *PaymentService) publish(ctx context.Context, eventType string, payment *models.Payment) {
	if s.Producer == nil {
		return
	}
	l := logging.FromContext(ctx)

	event := map[string]interface{}{
		"type":             eventType,
		"payment_id":       payment.ID,
		"user_id":          payment.UserID,
		"gateway_order_id": payment.GatewayOrderID,
		"amount":           payment.Amount,
		"currency":         payment.Currency,
		"status":           payment.Status,
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.Publish(pubCtx, events.TopicPaymentEvents, payment.GatewayOrderID, event); err != nil {
		l.Warn("kafka publish error", "type", eventType, "error", err)
	}
}

func mapPaymentRepoErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrPaymentNotFound):
		return fmt.Errorf("%w: payment", ErrNotFound)
	case errors.Is(err, repo.ErrTerminalStatus):
		return fmt.Errorf("%w: payment status is terminal", ErrInvalidTransition)
	default:
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
}

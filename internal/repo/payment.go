package repo

import (
	"context"
	"errors"
	"time"

	"github.com/campusprint/print-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrTerminalStatus  = errors.New("payment status is terminal")
)

type PaymentRepo struct {
	DB *gorm.DB
}

func (r *PaymentRepo) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.DB.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *PaymentRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepo) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string, userID uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	err := r.DB.WithContext(ctx).
		Where("gateway_order_id = ? AND user_id = ?", gatewayOrderID, userID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

// MarkCompleted flips a created payment to completed. The write is keyed on
// status = created so exactly one of two concurrent completions wins; the
// loser gets ErrTerminalStatus.
func (r *PaymentRepo) MarkCompleted(ctx context.Context, gatewayOrderID string, userID uuid.UUID, fields map[string]any) (*models.Payment, error) {
	updates := map[string]any{
		"status":     models.PaymentStatusCompleted,
		"updated_at": time.Now().UTC(),
	}
	for k, v := range fields {
		updates[k] = v
	}

	res := r.DB.WithContext(ctx).Model(&models.Payment{}).
		Where("gateway_order_id = ? AND user_id = ? AND status = ?",
			gatewayOrderID, userID, models.PaymentStatusCreated).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByGatewayOrderID(ctx, gatewayOrderID, userID); err != nil {
			return nil, err
		}
		return nil, ErrTerminalStatus
	}
	return r.GetByGatewayOrderID(ctx, gatewayOrderID, userID)
}

// MarkFailed is idempotent: failing an already failed payment is a no-op,
// failing a completed one is rejected.
func (r *PaymentRepo) MarkFailed(ctx context.Context, gatewayOrderID string, userID uuid.UUID, reason string) (*models.Payment, error) {
	res := r.DB.WithContext(ctx).Model(&models.Payment{}).
		Where("gateway_order_id = ? AND user_id = ? AND status = ?",
			gatewayOrderID, userID, models.PaymentStatusCreated).
		Updates(map[string]any{
			"status":         models.PaymentStatusFailed,
			"failure_reason": reason,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		p, err := r.GetByGatewayOrderID(ctx, gatewayOrderID, userID)
		if err != nil {
			return nil, err
		}
		if p.Status == models.PaymentStatusFailed {
			return p, nil
		}
		return nil, ErrTerminalStatus
	}
	return r.GetByGatewayOrderID(ctx, gatewayOrderID, userID)
}

func (r *PaymentRepo) List(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]models.Payment, error) {
	q := r.DB.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" && status != "all" {
		q = q.Where("status = ?", status)
	}

	var payments []models.Payment
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

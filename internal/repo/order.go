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
	ErrAlreadyLinked  = errors.New("payment already linked")
	ErrStatusConflict = errors.New("status conflict")
	ErrOrderNotFound  = errors.New("order not found")
)

type OrderRepo struct {
	DB *gorm.DB
}

func (r *OrderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.DB.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ListByLocation returns the per-location queue: oldest submission first.
// The projection is recomputed on every call, nothing is cached.
func (r *OrderRepo) ListByLocation(ctx context.Context, location, status string) ([]models.Order, error) {
	var orders []models.Order
	q := r.DB.WithContext(ctx).Where("location = ? AND status = ?", location, status)
	if err := q.Order("created_at ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	q := r.DB.WithContext(ctx).Where("user_id = ?", userID)
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// LinkPayment attaches a payment to an order exactly once. The conditional
// write on payment_id IS NULL serializes concurrent attempts: the loser
// observes ErrAlreadyLinked.
func (r *OrderRepo) LinkPayment(ctx context.Context, orderID, paymentID uuid.UUID) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_id IS NULL", orderID).
		Updates(map[string]any{"payment_id": paymentID, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, orderID); err != nil {
			return err
		}
		return ErrAlreadyLinked
	}
	return nil
}

// AdvanceStatus moves an order one step up the status lattice. The update is
// keyed on the expected predecessor status, so an out-of-order or concurrent
// duplicate transition affects zero rows and is reported as a conflict.
func (r *OrderRepo) AdvanceStatus(ctx context.Context, orderID uuid.UUID, newStatus string) error {
	prev, ok := models.PrevOrderStatus(newStatus)
	if !ok {
		return ErrStatusConflict
	}

	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, prev).
		Updates(map[string]any{"status": newStatus, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, orderID); err != nil {
			return err
		}
		return ErrStatusConflict
	}
	return nil
}

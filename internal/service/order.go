package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/campusprint/print-service/internal/events"
	"github.com/campusprint/print-service/internal/models"
	"github.com/campusprint/print-service/internal/repo"
	"github.com/campusprint/print-service/internal/storage"
	"github.com/campusprint/print-service/pkg/logging"
)

const (
	maxPages  = 2000
	maxCopies = 100
)

var (
	colorModes = map[string]bool{"bw": true, "color": true}
	paperSizes = map[string]bool{"A4": true, "A3": true, "letter": true}
	bindings   = map[string]bool{"none": true, "staple": true, "spiral": true}
)

// Upload is the incoming artifact: the file content plus enough metadata to
// store it.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type OrderService struct {
	Repo     *repo.OrderRepo
	Blobs    storage.BlobStore
	Producer *events.Producer

	// ES is optional; when nil orders are not indexed and Search is
	// unavailable.
	ES      *elasticsearch.Client
	ESIndex string

	Locations []string
}

func (s *OrderService) validateSpec(spec models.PrintSpec) error {
	if !s.validLocation(spec.Location) {
		return fmt.Errorf("%w: unknown pickup location %q", ErrValidation, spec.Location)
	}
	if spec.Pages < 1 || spec.Pages > maxPages {
		return fmt.Errorf("%w: pages must be between 1 and %d", ErrValidation, maxPages)
	}
	if spec.Copies < 1 || spec.Copies > maxCopies {
		return fmt.Errorf("%w: copies must be between 1 and %d", ErrValidation, maxCopies)
	}
	if !colorModes[spec.ColorMode] {
		return fmt.Errorf("%w: color_mode must be bw or color", ErrValidation)
	}
	if !paperSizes[spec.PaperSize] {
		return fmt.Errorf("%w: paper_size must be A4, A3 or letter", ErrValidation)
	}
	if !bindings[spec.Binding] {
		return fmt.Errorf("%w: binding must be none, staple or spiral", ErrValidation)
	}
	return nil
}

func (s *OrderService) validLocation(location string) bool {
	for _, loc := range s.Locations {
		if loc == location {
			return true
		}
	}
	return false
}

// Create validates the print spec, stores the artifact and persists the
// order with status in_queue. The user id must come from the authenticated
// caller, never a default.
func (s *OrderService) Create(ctx context.Context, userID uuid.UUID, upload Upload, spec models.PrintSpec) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create", "user_id", userID)

	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if upload.Body == nil || upload.FileName == "" {
		return nil, fmt.Errorf("%w: no file uploaded", ErrValidation)
	}
	if spec.Binding == "" {
		spec.Binding = "none"
	}
	if err := s.validateSpec(spec); err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("%d-%s", time.Now().UnixNano(), upload.FileName)
	fileURL, err := s.Blobs.Upload(ctx, objectName, upload.ContentType, upload.Body, upload.Size)
	if err != nil {
		l.Error("create_order_error", "status", 502, "reason", "blob upload failed", "error", err)
		return nil, fmt.Errorf("%w: artifact upload failed: %v", ErrGatewayUnavailable, err)
	}

	order := &models.Order{
		ID:       uuid.New(),
		UserID:   userID,
		FileURL:  fileURL,
		FileName: upload.FileName,
		Spec:     spec,
		Status:   models.OrderStatusInQueue,
	}

	order, err = s.Repo.Create(ctx, order)
	if err != nil {
		l.Error("create_order_error", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.publish(ctx, "order_created", order)
	s.index(ctx, order)

	l.Info("create_order_success", "order_id", order.ID, "location", spec.Location)
	return order, nil
}

// LocationQueue is the confirmed queue for a pickup location: paid orders
// only, oldest first.
func (s *OrderService) LocationQueue(ctx context.Context, location string) ([]models.Order, error) {
	return s.ListByLocation(ctx, location, models.OrderStatusPaid)
}

func (s *OrderService) ListByLocation(ctx context.Context, location, status string) ([]models.Order, error) {
	if !s.validLocation(location) {
		return nil, fmt.Errorf("%w: unknown pickup location %q", ErrValidation, location)
	}
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	orders, err := s.Repo.ListByLocation(ctx, location, status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return orders, nil
}

func (s *OrderService) HistoryForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repo.ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return order, nil
}

// LinkPayment attaches a payment to an order, at most once.
func (s *OrderService) LinkPayment(ctx context.Context, orderID, paymentID uuid.UUID) error {
	err := s.Repo.LinkPayment(ctx, orderID, paymentID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrAlreadyLinked):
		return fmt.Errorf("%w: order %s", ErrAlreadyLinked, orderID)
	case errors.Is(err, repo.ErrOrderNotFound):
		return fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	default:
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
}

// AdvanceStatus moves an order one step up the lattice
// in_queue < paid < processing < ready < completed.
func (s *OrderService) AdvanceStatus(ctx context.Context, orderID uuid.UUID, newStatus string) error {
	if !models.ValidOrderStatus(newStatus) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}

	err := s.Repo.AdvanceStatus(ctx, orderID, newStatus)
	switch {
	case err == nil:
		if order, gerr := s.Repo.GetByID(ctx, orderID); gerr == nil {
			s.publish(ctx, "order_"+newStatus, order)
		}
		return nil
	case errors.Is(err, repo.ErrStatusConflict):
		return fmt.Errorf("%w: cannot move order %s to %s", ErrInvalidTransition, orderID, newStatus)
	case errors.Is(err, repo.ErrOrderNotFound):
		return fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	default:
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	if s.Producer == nil {
		return
	}
	l := logging.FromContext(ctx)

	event := map[string]interface{}{
		"type":     eventType,
		"order_id": order.ID,
		"user_id":  order.UserID,
		"location": order.Spec.Location,
		"status":   order.Status,
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.Publish(pubCtx, events.TopicOrderEvents, order.ID.String(), event); err != nil {
		l.Warn("kafka publish error", "type", eventType, "error", err)
	}
}

func (s *OrderService) index(ctx context.Context, order *models.Order) {
	if s.ES == nil {
		return
	}
	l := logging.FromContext(ctx)

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(order); err != nil {
		l.Warn("es index error", "error", err)
		return
	}

	res, err := s.ES.Index(
		s.ESIndex,
		&buf,
		s.ES.Index.WithDocumentID(order.ID.String()),
		s.ES.Index.WithContext(ctx),
	)
	if err != nil {
		l.Warn("es index error", "error", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		l.Warn("es index error", "status", res.Status())
	}
}

package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campusprint/print-service/internal/gateway"
	"github.com/campusprint/print-service/internal/models"
	"github.com/campusprint/print-service/internal/repo"
)

var testSecret = []byte("test-razorpay-secret")

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Order{}, &models.Payment{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

type fakeGateway struct {
	mu sync.Mutex

	failCreate bool
	failFetch  bool
	detail     *gateway.PaymentDetail

	created      int
	lastAmount   int64
	lastCurrency string
	lastReceipt  string
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string, _ map[string]interface{}) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failCreate {
		return "", errors.New("gateway down")
	}
	g.created++
	g.lastAmount = amount
	g.lastCurrency = currency
	g.lastReceipt = receipt
	return fmt.Sprintf("order_fake_%d", g.created), nil
}

func (g *fakeGateway) FetchPayment(_ context.Context, _ string) (*gateway.PaymentDetail, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failFetch {
		return nil, errors.New("gateway down")
	}
	if g.detail != nil {
		return g.detail, nil
	}
	return &gateway.PaymentDetail{Method: "upi", VPA: "someone@upi"}, nil
}

type fakeBlobStore struct {
	uploads int
	fail    bool
}

func (b *fakeBlobStore) Upload(_ context.Context, name, _ string, r io.Reader, _ int64) (string, error) {
	if b.fail {
		return "", errors.New("storage down")
	}
	_, _ = io.Copy(io.Discard, r)
	b.uploads++
	return "https://blobs.test/uploads/" + name, nil
}

func newOrderService(db *gorm.DB) (*OrderService, *fakeBlobStore) {
	blobs := &fakeBlobStore{}
	return &OrderService{
		Repo:      &repo.OrderRepo{DB: db},
		Blobs:     blobs,
		Locations: []string{"library", "admin-block", "hostel"},
	}, blobs
}

func newPaymentService(db *gorm.DB) (*PaymentService, *fakeGateway) {
	gw := &fakeGateway{}
	return &PaymentService{
		Repo:    &repo.PaymentRepo{DB: db},
		Gateway: gw,
	}, gw
}

func newReconcileService(db *gorm.DB) (*ReconcileService, *OrderService, *PaymentService, *fakeGateway) {
	orders, _ := newOrderService(db)
	payments, gw := newPaymentService(db)
	return &ReconcileService{
		Payments:  payments,
		Orders:    orders,
		Gateway:   gw,
		KeySecret: testSecret,
	}, orders, payments, gw
}

func sign(gatewayOrderID, gatewayPaymentID string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func validSpec(location string) models.PrintSpec {
	return models.PrintSpec{
		Pages:     10,
		ColorMode: "color",
		PaperSize: "A4",
		Copies:    2,
		Binding:   "none",
		Location:  location,
	}
}

func testUpload(name string) Upload {
	body := strings.NewReader("%PDF-1.4 test document")
	return Upload{
		FileName:    name,
		ContentType: "application/pdf",
		Size:        int64(body.Len()),
		Body:        body,
	}
}

func createTestOrder(t *testing.T, svc *OrderService, userID uuid.UUID, location string) *models.Order {
	t.Helper()

	order, err := svc.Create(context.Background(), userID, testUpload("notes.pdf"), validSpec(location))
	require.NoError(t, err)
	require.NotNil(t, order)
	return order
}

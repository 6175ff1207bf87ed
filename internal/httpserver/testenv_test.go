package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campusprint/print-service/internal/gateway"
	"github.com/campusprint/print-service/internal/models"
	"github.com/campusprint/print-service/internal/repo"
	"github.com/campusprint/print-service/internal/service"
)

var testSecret = []byte("test-razorpay-secret")

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB

	Auth    *AuthHTTP
	Order   *OrderHTTP
	Payment *PaymentHTTP

	Gateway *fakeGateway
}

type fakeGateway struct {
	mu         sync.Mutex
	created    int
	failCreate bool
}

func (g *fakeGateway) CreateOrder(_ context.Context, _ int64, _, _ string, _ map[string]interface{}) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failCreate {
		return "", errors.New("gateway down")
	}
	g.created++
	return fmt.Sprintf("order_fake_%d", g.created), nil
}

func (g *fakeGateway) FetchPayment(_ context.Context, _ string) (*gateway.PaymentDetail, error) {
	return &gateway.PaymentDetail{Method: "upi", VPA: "someone@upi"}, nil
}

type fakeBlobStore struct{}

func (fakeBlobStore) Upload(_ context.Context, name, _ string, r io.Reader, _ int64) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	return "https://blobs.test/uploads/" + name, nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Order{}, &models.Payment{}))

	gw := &fakeGateway{}

	orderSvc := &service.OrderService{
		Repo:      &repo.OrderRepo{DB: db},
		Blobs:     fakeBlobStore{},
		Locations: []string{"library", "admin-block", "hostel"},
	}
	paymentSvc := &service.PaymentService{
		Repo:    &repo.PaymentRepo{DB: db},
		Gateway: gw,
	}
	reconcileSvc := &service.ReconcileService{
		Payments:  paymentSvc,
		Orders:    orderSvc,
		Gateway:   gw,
		KeySecret: testSecret,
	}
	authSvc := &service.AuthService{
		Users:     &repo.UserRepo{DB: db},
		JWTSecret: []byte("test-jwt-secret"),
	}

	return &testEnv{
		T:       t,
		E:       echo.New(),
		DB:      db,
		Auth:    &AuthHTTP{Svc: authSvc},
		Order:   &OrderHTTP{Svc: orderSvc},
		Payment: &PaymentHTTP{Svc: paymentSvc, Reconcile: reconcileSvc, KeyID: "rzp_test_key"},
		Gateway: gw,
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, asUser uuid.UUID) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	if asUser != uuid.Nil {
		c.Set("user_id", asUser.String())
	}
	return rec, c
}

func (env *testEnv) doMultipartOrder(asUser uuid.UUID, fields map[string]string) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("file", "notes.pdf")
	require.NoError(env.T, err)
	_, err = fw.Write([]byte("%PDF-1.4 test document"))
	require.NoError(env.T, err)

	for k, v := range fields {
		require.NoError(env.T, w.WriteField(k, v))
	}
	require.NoError(env.T, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/orders/create", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())

	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	if asUser != uuid.Nil {
		c.Set("user_id", asUser.String())
	}
	return rec, c
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

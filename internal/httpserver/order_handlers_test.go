package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/campusprint/print-service/internal/models"
)

func validOrderFields() map[string]string {
	return map[string]string{
		"pages":      "10",
		"color_mode": "color",
		"paper_size": "A4",
		"copies":     "2",
		"binding":    "none",
		"location":   "library",
	}
}

func TestCreateOrderHandler(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	rec, c := env.doMultipartOrder(userID, validOrderFields())
	require.NoError(t, env.Order.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])

	order := body["order"].(map[string]interface{})
	require.Equal(t, "in_queue", order["status"])
	require.Equal(t, userID.String(), order["user_id"])
	require.Contains(t, order["file_url"], "notes.pdf")
}

func TestCreateOrderHandler_BadSpec(t *testing.T) {
	env := newTestEnv(t)

	fields := validOrderFields()
	fields["location"] = "cafeteria"

	rec, c := env.doMultipartOrder(uuid.New(), fields)
	require.NoError(t, env.Order.Create(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "validation_error", decodeBody(t, rec)["code"])
}

func TestQueueHandler(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	// Two orders: one paid, one still in the submission queue.
	recA, cA := env.doMultipartOrder(userID, validOrderFields())
	require.NoError(t, env.Order.Create(cA))
	require.Equal(t, http.StatusCreated, recA.Code)

	recB, cB := env.doMultipartOrder(userID, validOrderFields())
	require.NoError(t, env.Order.Create(cB))
	require.Equal(t, http.StatusCreated, recB.Code)

	var created struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(recA.Body.Bytes(), &created))

	require.NoError(t, env.Order.Svc.LinkPayment(cA.Request().Context(), created.Order.ID, uuid.New()))
	require.NoError(t, env.Order.Svc.AdvanceStatus(cA.Request().Context(), created.Order.ID, models.OrderStatusPaid))

	// Default view: the confirmed (paid) queue.
	rec, c := env.doJSONRequest(http.MethodGet, "/orders?location=library", nil, userID)
	require.NoError(t, env.Order.Queue(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var orders []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	require.Equal(t, created.Order.ID, orders[0].ID)

	// Explicit status filter shows fresh submissions.
	recQ, cQ := env.doJSONRequest(http.MethodGet, "/orders?location=library&status=in_queue", nil, userID)
	require.NoError(t, env.Order.Queue(cQ))
	require.Equal(t, http.StatusOK, recQ.Code)

	require.NoError(t, json.Unmarshal(recQ.Body.Bytes(), &orders))
	require.Len(t, orders, 1)

	// Missing location is a validation error.
	recBad, cBad := env.doJSONRequest(http.MethodGet, "/orders", nil, userID)
	require.NoError(t, env.Order.Queue(cBad))
	require.Equal(t, http.StatusBadRequest, recBad.Code)
}

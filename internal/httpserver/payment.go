package httpserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/campusprint/print-service/internal/models"
	"github.com/campusprint/print-service/internal/service"
	"github.com/campusprint/print-service/internal/transport"
	"github.com/campusprint/print-service/pkg/logging"
)

type PaymentHTTP struct {
	Svc       *service.PaymentService
	Reconcile *service.ReconcileService

	// KeyID is the public gateway key handed to clients for checkout.
	KeyID string
}

func (h *PaymentHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.create")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_payment_error", "status", 400, "reason", "invalid body", "error", err)
		return respondError(c, service.ErrValidation)
	}

	res, err := h.Svc.CreateIntent(ctx, uid, req.Amount, req.Currency, req.OrderID, req.Receipt)
	if err != nil {
		return respondError(c, err)
	}

	resp := transport.CreatePaymentResponse{
		Success:     true,
		KeyID:       h.KeyID,
		Persistence: "ok",
	}
	if res.Payment != nil {
		resp.Payment = res.Payment
		resp.Order = transport.GatewayOrder{
			ID:       res.GatewayOrderID,
			Amount:   res.Payment.Amount,
			Currency: res.Payment.Currency,
			Receipt:  res.Payment.Receipt,
			Status:   models.PaymentStatusCreated,
		}
	} else {
		// Gateway order exists but the local row does not. The client keeps
		// the gateway order id; support reconciles the missing row.
		resp.Persistence = "failed"
		resp.Order = transport.GatewayOrder{ID: res.GatewayOrderID, Status: models.PaymentStatusCreated}
	}

	l.Info("create_payment_success", "gateway_order_id", res.GatewayOrderID, "persistence", resp.Persistence)
	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHTTP) Verify(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.verify")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("verify_payment_error", "status", 400, "reason", "invalid body", "error", err)
		return respondError(c, service.ErrValidation)
	}

	res, err := h.Reconcile.Confirm(ctx, uid, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, req.OrderID)
	if err != nil {
		return respondError(c, err)
	}

	resp := transport.VerifyPaymentResponse{Success: true, Payment: res.Payment}
	if req.OrderID != nil {
		link := &transport.OrderLinkResult{Linked: res.OrderLinked}
		if res.OrderErr != nil {
			link.Error = res.OrderErr.Error()
		}
		resp.OrderLink = link
	}

	l.Info("verify_payment_success", "payment_id", res.Payment.ID, "order_linked", res.OrderLinked)
	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHTTP) History(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.history")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 20)
	status := c.QueryParam("status")

	res, err := h.Svc.History(ctx, uid, status, page, limit)
	if err != nil {
		return respondError(c, err)
	}

	l.Info("payment_history_success", "count", len(res.Payments))
	return c.JSON(http.StatusOK, transport.PaymentHistoryResponse{
		Success:  true,
		Payments: res.Payments,
		Summary:  res.Summary,
		Pagination: transport.Pagination{
			CurrentPage: res.Page,
			PerPage:     res.PerPage,
		},
	})
}

func (h *PaymentHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.get")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_payment_error", "status", 400, "reason", "invalid payment id")
		return respondError(c, service.ErrValidation)
	}

	payment, err := h.Svc.Get(ctx, paymentID, uid)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "payment": payment})
}

func intQuery(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

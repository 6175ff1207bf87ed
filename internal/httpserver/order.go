package httpserver

import (
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/campusprint/print-service/internal/models"
	"github.com/campusprint/print-service/internal/service"
	"github.com/campusprint/print-service/internal/transport"
	"github.com/campusprint/print-service/internal/util"
	"github.com/campusprint/print-service/pkg/logging"
)

type OrderHTTP struct {
	Svc     *service.OrderService
	ES      *elasticsearch.Client
	ESIndex string
}

func (h *OrderHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	uid, err := userID(c)
	if err != nil {
		l.Warn("create_order_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "no file uploaded")
		return respondError(c, service.ErrValidation)
	}

	src, err := fileHeader.Open()
	if err != nil {
		l.Error("create_order_error", "status", 500, "error", err)
		return respondError(c, service.ErrPersistence)
	}
	defer src.Close()

	spec, err := specFromForm(c)
	if err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid spec", "error", err)
		return respondError(c, err)
	}

	upload := service.Upload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
		Size:        fileHeader.Size,
		Body:        src,
	}

	order, err := h.Svc.Create(ctx, uid, upload, spec)
	if err != nil {
		return respondError(c, err)
	}

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "order": order})
}

// Queue serves the location-operator dashboard: by default the confirmed
// queue (paid, oldest first); an explicit status filter also shows fresh
// submissions.
func (h *OrderHTTP) Queue(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.queue")

	location := c.QueryParam("location")
	if location == "" {
		l.Warn("queue_error", "status", 400, "reason", "location required")
		return respondError(c, service.ErrValidation)
	}

	status := c.QueryParam("status")
	if status == "" {
		status = models.OrderStatusPaid
	}

	orders, err := h.Svc.ListByLocation(ctx, location, status)
	if err != nil {
		return respondError(c, err)
	}

	l.Info("queue_success", "location", location, "count", len(orders))
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) History(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.history")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	orders, err := h.Svc.HistoryForUser(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}

	l.Info("history_success", "count", len(orders))
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.search")

	if h.ES == nil {
		l.Warn("search_error", "status", 502, "reason", "search disabled")
		return respondError(c, service.ErrGatewayUnavailable)
	}

	q := c.QueryParam("q")
	if q == "" {
		return respondError(c, service.ErrValidation)
	}
	location := c.QueryParam("location")

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.Calculate(page, size)

	total, orders, err := service.SearchOrders(ctx, h.ES, h.ESIndex, q, location, from, size)
	if err != nil {
		return respondError(c, err)
	}

	l.Info("search_success", "total", total)
	return c.JSON(http.StatusOK, transport.SearchOrdersResponse{Total: total, Orders: orders})
}

func specFromForm(c echo.Context) (models.PrintSpec, error) {
	pages, err := strconv.Atoi(c.FormValue("pages"))
	if err != nil {
		return models.PrintSpec{}, service.ErrValidation
	}
	copies, err := strconv.Atoi(c.FormValue("copies"))
	if err != nil {
		return models.PrintSpec{}, service.ErrValidation
	}

	return models.PrintSpec{
		Pages:     pages,
		ColorMode: c.FormValue("color_mode"),
		PaperSize: c.FormValue("paper_size"),
		Copies:    copies,
		Binding:   c.FormValue("binding"),
		Location:  c.FormValue("location"),
	}, nil
}

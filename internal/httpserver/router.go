package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/campusprint/print-service/internal/middleware/auth"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	OrderHandler   *OrderHTTP
	PaymentHandler *PaymentHTTP
	JWTSecret      []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	guard := &authmw.TokenGuard{JWTSecret: d.JWTSecret}

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)

	orders := e.Group("/orders")
	orders.POST("/create", d.OrderHandler.Create, guard.RequireLogin)
	orders.GET("/history", d.OrderHandler.History, guard.RequireLogin)
	orders.GET("", d.OrderHandler.Queue, guard.RequireOperator)
	orders.GET("/search", d.OrderHandler.Search, guard.RequireOperator)

	payment := e.Group("/payment", guard.RequireLogin)
	payment.POST("/create", d.PaymentHandler.Create)
	payment.POST("/verify", d.PaymentHandler.Verify)
	payment.GET("/history", d.PaymentHandler.History)
	payment.GET("/:id", d.PaymentHandler.Get)
}

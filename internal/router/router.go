package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"churpay/internal/config"
	"churpay/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	payfastHandler *handler.PayfastHandler,
	paymentHandler *handler.PaymentHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Churpay Backend is running"})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{"ok": true, "service": "backend"})
	})

	// Public routes
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)

	// Gateway-facing routes. The IPN endpoint must stay reachable without
	// authentication and must always acknowledge.
	api.POST("/payfast/initiate", payfastHandler.Initiate)
	api.POST("/payfast/ipn", payfastHandler.IPN)

	// Dashboard read model
	api.GET("/payments", paymentHandler.List)
	api.GET("/payments/ref/:reference", paymentHandler.GetByReference)

	// Operator routes (require JWT authentication)
	admin := api.Group("/admin", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
	}))

	admin.GET("/ipn-events", paymentHandler.ListIpnEvents)
	admin.POST("/payfast/revalidate", payfastHandler.Revalidate)
	admin.POST("/backfill-from-ipn", payfastHandler.BackfillFromIpn)
	admin.PATCH("/payments/:reference", paymentHandler.UpdateMeta)
	admin.GET("/payments/export", paymentHandler.ExportCSV)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

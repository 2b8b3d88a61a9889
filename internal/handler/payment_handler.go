package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"churpay/internal/errors"
	"churpay/internal/service"
)

// PaymentHandler serves the payments read model and operator mutations.
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// UpdateMetaRequest represents an operator override of note/tags/status.
type UpdateMetaRequest struct {
	Note   *string `json:"note"`
	Tags   *string `json:"tags"`
	Status *string `json:"status"`
}

// List godoc
// @Summary List payments
// @Tags payments
// @Produce json
// @Param ref query string false "Filter by merchant reference"
// @Param status query string false "Filter by status"
// @Param limit query int false "Maximum rows (default 200)"
// @Success 200 {array} model.Payment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /payments [get]
func (h *PaymentHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	payments, err := h.paymentService.List(c.Request().Context(), c.QueryParam("ref"), c.QueryParam("status"), limit)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, payments)
}

// GetByReference godoc
// @Summary Get a payment by merchant reference
// @Tags payments
// @Produce json
// @Param reference path string true "Merchant reference"
// @Success 200 {object} model.Payment
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /payments/ref/{reference} [get]
func (h *PaymentHandler) GetByReference(c echo.Context) error {
	payment, err := h.paymentService.GetByReference(c.Request().Context(), c.Param("reference"))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, payment)
}

// UpdateMeta godoc
// @Summary Operator override of note, tags or status
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param reference path string true "Merchant reference"
// @Param request body UpdateMetaRequest true "Fields to update"
// @Success 200 {object} model.Payment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/payments/{reference} [patch]
func (h *PaymentHandler) UpdateMeta(c echo.Context) error {
	var req UpdateMetaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	payment, err := h.paymentService.UpdateMeta(c.Request().Context(), c.Param("reference"), req.Note, req.Tags, req.Status)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, payment)
}

// ListIpnEvents godoc
// @Summary List stored IPN events
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param ref query string false "Filter by merchant reference"
// @Param limit query int false "Maximum rows (default 200)"
// @Success 200 {array} model.IpnEvent
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/ipn-events [get]
func (h *PaymentHandler) ListIpnEvents(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	events, err := h.paymentService.ListEvents(c.Request().Context(), c.QueryParam("ref"), limit)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, events)
}

// ExportCSV godoc
// @Summary Download all payments as CSV
// @Tags admin
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "CSV data"
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/payments/export [get]
func (h *PaymentHandler) ExportCSV(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="payments.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	if err := h.paymentService.WriteCSV(c.Request().Context(), c.Response()); err != nil {
		// Headers are already sent; the best we can do is log via Echo.
		c.Logger().Errorf("csv export failed: %v", err)
	}
	return nil
}

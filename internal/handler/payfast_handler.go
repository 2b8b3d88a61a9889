package handler

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"churpay/internal/errors"
	"churpay/internal/service"
)

// PayfastHandler handles the gateway-facing and operator-facing PayFast
// endpoints.
type PayfastHandler struct {
	intentService    service.IntentService
	reconcileService service.ReconcileService
}

// NewPayfastHandler creates a new PayFast handler.
func NewPayfastHandler(intentService service.IntentService, reconcileService service.ReconcileService) *PayfastHandler {
	return &PayfastHandler{
		intentService:    intentService,
		reconcileService: reconcileService,
	}
}

// InitiateRequest represents a payment initiation request.
type InitiateRequest struct {
	Amount string `json:"amount" validate:"required"`
}

// InitiateResponse carries the gateway redirect URL and the reference the
// caller can poll later.
type InitiateResponse struct {
	Redirect          string `json:"redirect"`
	MerchantReference string `json:"merchant_reference"`
}

// RevalidateRequest identifies a payment to re-derive from its stored IPN.
type RevalidateRequest struct {
	Reference string `json:"reference" validate:"required"`
}

// BackfillRequest identifies a stored IPN event to build a payment from.
type BackfillRequest struct {
	IpnID string `json:"ipn_id" validate:"required,uuid"`
}

// Initiate godoc
// @Summary Start a PayFast payment
// @Tags payfast
// @Accept json
// @Produce json
// @Param request body InitiateRequest true "Payment amount"
// @Success 200 {object} InitiateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /payfast/initiate [post]
func (h *PayfastHandler) Initiate(c echo.Context) error {
	var req InitiateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	redirect, reference, err := h.intentService.Initiate(c.Request().Context(), req.Amount)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, InitiateResponse{
		Redirect:          redirect,
		MerchantReference: reference,
	})
}

// IPN godoc
// @Summary PayFast IPN webhook
// @Description Always acknowledges with 200 regardless of verification outcome, per the gateway's retry contract.
// @Tags payfast
// @Accept x-www-form-urlencoded
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /payfast/ipn [post]
func (h *PayfastHandler) IPN(c echo.Context) error {
	// Hard boundary: internal failures (including panics) are logged and
	// swallowed, otherwise the gateway retry-storms the endpoint.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[payfast] ipn handler panic recovered: %v", r)
		}
	}()

	form, err := c.FormParams()
	if err != nil {
		log.Printf("[payfast] ipn form parse failed: %v", err)
		return c.String(http.StatusOK, "OK")
	}

	params := make(map[string]string, len(form))
	for k, v := range form {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	result, err := h.reconcileService.ProcessNotification(c.Request().Context(), params)
	if err != nil {
		log.Printf("[payfast] ipn processing failed: %v", err)
	} else if result != nil {
		log.Printf("[payfast] ipn processed gates=%+v", result.Gates)
	}
	return c.String(http.StatusOK, "OK")
}

// Revalidate godoc
// @Summary Re-run verification against the stored IPN for a reference
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RevalidateRequest true "Merchant reference"
// @Success 200 {object} service.ReconcileResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/payfast/revalidate [post]
func (h *PayfastHandler) Revalidate(c echo.Context) error {
	var req RevalidateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	result, err := h.reconcileService.Revalidate(c.Request().Context(), req.Reference)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, result)
}

// BackfillFromIpn godoc
// @Summary Build a payment row from a stored IPN event
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BackfillRequest true "IPN event ID"
// @Success 200 {object} service.ReconcileResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/backfill-from-ipn [post]
func (h *PayfastHandler) BackfillFromIpn(c echo.Context) error {
	var req BackfillRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	eventID, err := uuid.Parse(req.IpnID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid ipn_id",
			Code:  "INVALID_UUID",
		})
	}

	result, err := h.reconcileService.BackfillFromEvent(c.Request().Context(), eventID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, result)
}

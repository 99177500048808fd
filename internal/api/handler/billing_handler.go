package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zentale/story-system/internal/core/ports"
)

// BillingHandler handles billing webhook deliveries.
type BillingHandler struct {
	service ports.BillingService
}

// NewBillingHandler creates a BillingHandler backed by the given service.
func NewBillingHandler(service ports.BillingService) *BillingHandler {
	return &BillingHandler{service: service}
}

// UpdateSubscription handles POST /v1/update-subscription.
//
// The source keys retries on the response status: 200 acknowledges, 404
// means the account is not provisioned yet (retry later), anything else
// retries too.
//
// @Summary      Apply a billing lifecycle event
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        body  body      billingEventRequest  true  "Billing event"
// @Success      200   {object}  nil
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/update-subscription [post]
func (h *BillingHandler) UpdateSubscription(c echo.Context) error {
	return h.process(c)
}

// PurchaseCreated handles POST /v1/purchase-created — one-off credit pack
// purchases, same envelope and contract as subscription events.
//
// @Summary      Apply a one-off purchase event
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        body  body      billingEventRequest  true  "Billing event"
// @Success      200   {object}  nil
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/purchase-created [post]
func (h *BillingHandler) PurchaseCreated(c echo.Context) error {
	return h.process(c)
}

func (h *BillingHandler) process(c echo.Context) error {
	var req billingEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	err := h.service.ProcessEvent(c.Request().Context(), ports.BillingEventInput{
		EventID:   req.Event.ID,
		AppUserID: req.Event.AppUserID,
		ProductID: req.Event.ProductID,
		Type:      req.Event.Type,
	})
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusOK)
}

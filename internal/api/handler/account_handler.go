package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zentale/story-system/internal/core/ports"
)

// AccountHandler handles account provisioning and reads.
type AccountHandler struct {
	service ports.AccountService
}

// NewAccountHandler creates an AccountHandler backed by the given service.
func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// Initialize handles POST /v1/accounts — provisions the default account for
// the authenticated user. The response carries the plaintext API key; it is
// shown exactly once.
//
// @Summary      Provision the account for the authenticated user
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      provisionAccountRequest  true  "Profile fields"
// @Success      201   {object}  ports.ProvisionedAccount
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/accounts [post]
func (h *AccountHandler) Initialize(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req provisionAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	provisioned, err := h.service.Provision(c.Request().Context(), ports.ProvisionAccountInput{
		UserID:      userID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"account": provisioned.Account,
		"api_key": provisioned.APIKey,
	})
}

// Me handles GET /v1/accounts/me — returns the current entitlement state.
//
// @Summary      Read the authenticated user's account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  domain.Account
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/accounts/me [get]
func (h *AccountHandler) Me(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	account, err := h.service.Snapshot(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, account)
}

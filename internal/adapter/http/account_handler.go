package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	domain "credora-backend/internal/domain/borrower"
	"credora-backend/internal/usecase/borrower"
)

type AccountHandler struct{ uc *borrower.Usecase }

func NewAccountHandler(uc *borrower.Usecase) *AccountHandler { return &AccountHandler{uc: uc} }

type registerReq struct {
	Email         string `json:"email"          validate:"omitempty,email"`
	DisplayName   string `json:"display_name"   validate:"required"`
	Role          string `json:"role"           validate:"required,oneof=BORROWER LENDER"`
	WalletAddress string `json:"wallet_address"`
}

func (h *AccountHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Register(c.Request().Context(), borrower.RegisterInput{
		Email:         req.Email,
		DisplayName:   req.DisplayName,
		Role:          domain.Role(req.Role),
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *AccountHandler) GetAccount(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("account_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

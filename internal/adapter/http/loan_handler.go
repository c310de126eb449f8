package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"credora-backend/internal/pricing"
	"credora-backend/internal/usecase/loan"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type fundLoanReq struct {
	PoolID         string  `json:"pool_id"         validate:"required,hex32"`
	PrincipalUsd   float64 `json:"principal_usd"   validate:"required,gt=0,dec2"`
	TenureMonths   int     `json:"tenure_months"   validate:"required,gt=0"`
	CollateralKind string  `json:"collateral_kind" validate:"required,collateralkind"`
	Symbol         string  `json:"collateral_symbol" validate:"required"`
	CollateralLink string  `json:"collateral_link" validate:"required,url"`
}

func (h *LoanHandler) FundLoan(c echo.Context) error {
	borrower, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid " + HeaderActorID})
	}
	var req fundLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := h.uc.Fund(c.Request().Context(), loan.FundLoanInput{
		PoolID:         req.PoolID,
		BorrowerID:     borrower,
		PrincipalUsd:   req.PrincipalUsd,
		TenureMonths:   req.TenureMonths,
		CollateralKind: pricing.CollateralKind(req.CollateralKind),
		Symbol:         req.Symbol,
		CollateralLink: req.CollateralLink,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) ListLoans(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), c.QueryParam("borrower_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) RepayLoan(c echo.Context) error {
	borrower, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid " + HeaderActorID})
	}
	dto, err := h.uc.Repay(c.Request().Context(), loan.RepayInput{
		LoanID:     c.Param("loan_id"),
		BorrowerID: borrower,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

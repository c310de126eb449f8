package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"credora-backend/internal/pricing"
	"credora-backend/internal/usecase/pool"
)

type PoolHandler struct{ uc *pool.Usecase }

func NewPoolHandler(uc *pool.Usecase) *PoolHandler { return &PoolHandler{uc: uc} }

type createPoolReq struct {
	Name                   string   `json:"name"                     validate:"required"`
	Description            string   `json:"description"`
	AprBps                 int      `json:"apr_bps"                  validate:"required,bps"`
	LtvBps                 int      `json:"ltv_bps"                  validate:"required,bps"`
	TenureMonths           []int    `json:"tenure_months"            validate:"required,min=1,dive,gt=0"`
	AllowedCollateralKinds []string `json:"allowed_collateral_kinds" validate:"required,min=1,dive,collateralkind"`
	AllowedSymbols         []string `json:"allowed_symbols"`
	MinLoanUsd             float64  `json:"min_loan_usd"             validate:"required,gt=0,dec2"`
	MaxLoanUsd             float64  `json:"max_loan_usd"             validate:"required,gt=0,dec2"`
	TotalLiquidityUsd      float64  `json:"total_liquidity_usd"      validate:"required,gt=0,dec2"`
}

func (h *PoolHandler) CreatePool(c echo.Context) error {
	owner, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid " + HeaderActorID})
	}
	var req createPoolReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	kinds := make([]pricing.CollateralKind, 0, len(req.AllowedCollateralKinds))
	for _, k := range req.AllowedCollateralKinds {
		kinds = append(kinds, pricing.CollateralKind(k))
	}
	dto, err := h.uc.Create(c.Request().Context(), pool.CreatePoolInput{
		OwnerID:           owner,
		Name:              req.Name,
		Description:       req.Description,
		AprBps:            req.AprBps,
		LtvBps:            req.LtvBps,
		TenureMonths:      req.TenureMonths,
		AllowedKinds:      kinds,
		AllowedSymbols:    req.AllowedSymbols,
		MinLoanUsd:        req.MinLoanUsd,
		MaxLoanUsd:        req.MaxLoanUsd,
		TotalLiquidityUsd: req.TotalLiquidityUsd,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *PoolHandler) ListPools(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PoolHandler) GetPool(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("pool_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// QuotePool prices a prospective loan without funding it; the breakdown the
// borrower reviews before submitting.
func (h *PoolHandler) QuotePool(c echo.Context) error {
	principal, err := strconv.ParseFloat(c.QueryParam("principal_usd"), 64)
	if err != nil || principal <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "principal_usd must be a positive number"})
	}
	months, err := strconv.Atoi(c.QueryParam("tenure_months"))
	if err != nil || months <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "tenure_months must be a positive integer"})
	}
	kind := pricing.CollateralKind(c.QueryParam("collateral_kind"))
	if !pricing.ValidKind(kind) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "collateral_kind must be one of HBAR, TOKEN, RWA"})
	}
	symbol := c.QueryParam("symbol")
	if symbol == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "symbol is required"})
	}

	dto, err := h.uc.Quote(c.Request().Context(), pool.QuoteInput{
		PoolID:       c.Param("pool_id"),
		PrincipalUsd: principal,
		TenureMonths: months,
		Kind:         kind,
		Symbol:       symbol,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

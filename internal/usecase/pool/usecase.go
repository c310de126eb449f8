package pool

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	borrowerDomain "credora-backend/internal/domain/borrower"
	poolDomain "credora-backend/internal/domain/pool"
	"credora-backend/internal/pricing"
	"credora-backend/pkg/id"
)

// Pool invariant violations. Zero LTV is rejected here on purpose so the
// engine's division edge cannot be reached through the API.
var (
	ErrInvalidApr        = errors.New("apr_bps must be in (0, 10000]")
	ErrInvalidLtv        = errors.New("ltv_bps must be in (0, 10000]")
	ErrNoTenures         = errors.New("at least one tenure option required")
	ErrInvalidTenures    = errors.New("tenure options must be positive")
	ErrNoCollateralKinds = errors.New("at least one collateral kind required")
	ErrUnknownKind       = errors.New("unknown collateral kind")
	ErrBadLoanRange      = errors.New("max loan must be greater than min loan")
	ErrBadLiquidity      = errors.New("liquidity must be greater than 0")
	ErrNotLender         = errors.New("only lenders can create pools")
)

type Usecase struct {
	pools    poolDomain.Repository
	accounts borrowerDomain.Repository
	prices   pricing.PriceFeed
}

func NewUsecase(pools poolDomain.Repository, accounts borrowerDomain.Repository, prices pricing.PriceFeed) *Usecase {
	return &Usecase{pools: pools, accounts: accounts, prices: prices}
}

type CreatePoolInput struct {
	OwnerID           string
	Name              string
	Description       string
	AprBps            int
	LtvBps            int
	TenureMonths      []int
	AllowedKinds      []pricing.CollateralKind
	AllowedSymbols    []string
	MinLoanUsd        float64
	MaxLoanUsd        float64
	TotalLiquidityUsd float64
}

type OwnerDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type PoolDTO struct {
	PoolID                string                   `json:"pool_id"`
	Name                  string                   `json:"name"`
	Description           string                   `json:"description"`
	AprBps                int                      `json:"apr_bps"`
	LtvBps                int                      `json:"ltv_bps"`
	TenureMonths          []int                    `json:"tenure_months"`
	AllowedKinds          []pricing.CollateralKind `json:"allowed_collateral_kinds"`
	AllowedSymbols        []string                 `json:"allowed_symbols"`
	MinLoanUsd            float64                  `json:"min_loan_usd"`
	MaxLoanUsd            float64                  `json:"max_loan_usd"`
	TotalLiquidityUsd     float64                  `json:"total_liquidity_usd"`
	TotalBorrowedUsd      float64                  `json:"total_borrowed_usd"`
	RemainingLiquidityUsd float64                  `json:"remaining_liquidity_usd"`
	Owner                 OwnerDTO                 `json:"owner"`
	CreatedAt             time.Time                `json:"created_at"`
}

func toDTO(p *poolDomain.Pool) *PoolDTO {
	return &PoolDTO{
		PoolID:                p.PoolID,
		Name:                  p.Name,
		Description:           p.Description,
		AprBps:                p.AprBps,
		LtvBps:                p.LtvBps,
		TenureMonths:          p.TenureMonths,
		AllowedKinds:          p.AllowedKinds,
		AllowedSymbols:        p.AllowedSymbols,
		MinLoanUsd:            p.MinLoanUsd,
		MaxLoanUsd:            p.MaxLoanUsd,
		TotalLiquidityUsd:     p.TotalLiquidityUsd,
		TotalBorrowedUsd:      p.TotalBorrowedUsd,
		RemainingLiquidityUsd: p.Terms().RemainingLiquidity(),
		Owner:                 OwnerDTO{ID: p.OwnerID, DisplayName: p.OwnerName},
		CreatedAt:             p.CreatedAt,
	}
}

func validateCreate(in CreatePoolInput) error {
	if in.AprBps <= 0 || in.AprBps > pricing.BpsDenominator {
		return ErrInvalidApr
	}
	if in.LtvBps <= 0 || in.LtvBps > pricing.BpsDenominator {
		return ErrInvalidLtv
	}
	if len(in.TenureMonths) == 0 {
		return ErrNoTenures
	}
	for _, m := range in.TenureMonths {
		if m <= 0 {
			return ErrInvalidTenures
		}
	}
	if len(in.AllowedKinds) == 0 {
		return ErrNoCollateralKinds
	}
	for _, k := range in.AllowedKinds {
		if !pricing.ValidKind(k) {
			return ErrUnknownKind
		}
	}
	if in.MinLoanUsd >= in.MaxLoanUsd {
		return ErrBadLoanRange
	}
	if in.TotalLiquidityUsd <= 0 {
		return ErrBadLiquidity
	}
	return nil
}

func (u *Usecase) Create(ctx context.Context, in CreatePoolInput) (*PoolDTO, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	owner, err := u.accounts.GetByAccountID(ctx, in.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner.Role != borrowerDomain.RoleLender {
		return nil, ErrNotLender
	}

	p := &poolDomain.Pool{
		PoolID:            id.NewID32(),
		Name:              in.Name,
		Description:       in.Description,
		AprBps:            in.AprBps,
		LtvBps:            in.LtvBps,
		TenureMonths:      in.TenureMonths,
		AllowedKinds:      in.AllowedKinds,
		AllowedSymbols:    in.AllowedSymbols,
		MinLoanUsd:        in.MinLoanUsd,
		MaxLoanUsd:        in.MaxLoanUsd,
		TotalLiquidityUsd: in.TotalLiquidityUsd,
		OwnerID:           owner.AccountID,
		OwnerName:         owner.DisplayName,
	}
	if err := u.pools.Create(ctx, p); err != nil {
		return nil, err
	}

	log.Info().
		Str("pool_id", p.PoolID).
		Str("owner_id", p.OwnerID).
		Float64("liquidity_usd", p.TotalLiquidityUsd).
		Msg("pool created")
	return toDTO(p), nil
}

func (u *Usecase) Get(ctx context.Context, poolID string) (*PoolDTO, error) {
	p, err := u.pools.GetByPoolID(ctx, poolID)
	if err != nil {
		return nil, err
	}
	return toDTO(p), nil
}

func (u *Usecase) List(ctx context.Context) ([]PoolDTO, error) {
	pools, err := u.pools.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PoolDTO, 0, len(pools))
	for i := range pools {
		out = append(out, *toDTO(&pools[i]))
	}
	return out, nil
}

type QuoteInput struct {
	PoolID       string
	PrincipalUsd float64
	TenureMonths int
	Kind         pricing.CollateralKind
	Symbol       string
}

// QuoteDTO is the pricing breakdown for a prospective loan. Unit amounts
// are display estimates from the demo price table.
type QuoteDTO struct {
	PoolID                string             `json:"pool_id"`
	PrincipalUsd          float64            `json:"principal_usd"`
	AprBps                int                `json:"apr_bps"`
	TenureMonths          int                `json:"tenure_months"`
	InterestUsd           float64            `json:"interest_usd"`
	TotalPayoffUsd        float64            `json:"total_payoff_usd"`
	Collateral            pricing.Collateral `json:"collateral"`
	CollateralSymbol      string             `json:"collateral_symbol"`
	RemainingLiquidityUsd float64            `json:"remaining_liquidity_usd"`
	MaturityDate          time.Time          `json:"maturity_date"`
}

// Quote prices a prospective loan against a pool without funding it.
func (u *Usecase) Quote(ctx context.Context, in QuoteInput) (*QuoteDTO, error) {
	p, err := u.pools.GetByPoolID(ctx, in.PoolID)
	if err != nil {
		return nil, err
	}
	if !p.AcceptsSymbol(in.Symbol) {
		return nil, pricing.ErrDisallowedCollateral
	}
	terms := p.Terms()
	if err := terms.ValidateRequest(in.PrincipalUsd, in.TenureMonths, in.Kind); err != nil {
		return nil, err
	}

	// unknown symbols quote zero units; requiredUsd stays meaningful
	var unitPrice float64
	if asset, ok := u.prices.Quote(in.Symbol); ok {
		if asset.Kind != in.Kind {
			return nil, pricing.ErrDisallowedCollateral
		}
		unitPrice = asset.UnitPriceUsd
	}
	return &QuoteDTO{
		PoolID:                p.PoolID,
		PrincipalUsd:          in.PrincipalUsd,
		AprBps:                p.AprBps,
		TenureMonths:          in.TenureMonths,
		InterestUsd:           pricing.Interest(in.PrincipalUsd, p.AprBps, in.TenureMonths),
		TotalPayoffUsd:        pricing.TotalPayoff(in.PrincipalUsd, p.AprBps, in.TenureMonths),
		Collateral:            pricing.RequiredCollateral(in.PrincipalUsd, p.LtvBps, unitPrice),
		CollateralSymbol:      in.Symbol,
		RemainingLiquidityUsd: terms.RemainingLiquidity(),
		MaturityDate:          time.Now().UTC().AddDate(0, in.TenureMonths, 0),
	}, nil
}

// Package pricing holds the loan-pricing computations: simple interest,
// payoff, LTV collateral sizing, pool liquidity and the credit-score rule.
// Everything here is pure; callers persist results separately.
package pricing

import "errors"

// Validation failures returned by Terms.ValidateRequest, in check order.
// All are user-correctable input errors, surfaced verbatim to the caller.
var (
	ErrInvalidTenure         = errors.New("tenure not offered by pool")
	ErrDisallowedCollateral  = errors.New("collateral kind not accepted by pool")
	ErrAmountOutOfRange      = errors.New("amount outside pool loan range")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity in pool")
)

// CollateralKind is the category of asset pledged against a loan.
type CollateralKind string

const (
	KindHBAR  CollateralKind = "HBAR"  // native coin
	KindToken CollateralKind = "TOKEN" // fungible token
	KindRWA   CollateralKind = "RWA"   // real-world-asset token
)

// Kinds lists every valid collateral kind.
func Kinds() []CollateralKind { return []CollateralKind{KindHBAR, KindToken, KindRWA} }

// ValidKind reports whether k is one of the known collateral kinds.
func ValidKind(k CollateralKind) bool {
	return k == KindHBAR || k == KindToken || k == KindRWA
}

const (
	// BpsDenominator converts basis points to a fraction (10000 bps = 100%).
	BpsDenominator = 10000
	monthsPerYear  = 12
)

// Credit score rule: a flat bonus per repayment, capped at the ceiling.
const (
	repayScoreBonus = 20
	MaxCreditScore  = 850
	// InitialCreditScore is assigned to newly registered borrowers.
	InitialCreditScore = 600
)

// Interest computes simple (non-compounding) interest in USD, prorated by
// tenure over a 12-month year. aprBps is the annual rate in basis points.
// Any zero input yields zero interest.
func Interest(principalUsd float64, aprBps, tenureMonths int) float64 {
	return principalUsd * float64(aprBps) * float64(tenureMonths) / (monthsPerYear * BpsDenominator)
}

// TotalPayoff is principal plus Interest.
func TotalPayoff(principalUsd float64, aprBps, tenureMonths int) float64 {
	return principalUsd + Interest(principalUsd, aprBps, tenureMonths)
}

// Collateral is the sizing result for a prospective loan.
type Collateral struct {
	RequiredUsd   float64 `json:"required_usd"`
	RequiredUnits float64 `json:"required_units"`
}

// RequiredCollateral sizes the collateral so that the loan-to-value ratio
// does not exceed ltvBps. RequiredUnits is 0 when unitPriceUsd is not
// positive, keeping this total for display; callers must validate the price
// before treating units as actionable. ltvBps must be > 0 — pool validation
// rejects zero-LTV pools, so that division edge is unreachable via the API.
func RequiredCollateral(principalUsd float64, ltvBps int, unitPriceUsd float64) Collateral {
	requiredUsd := principalUsd / (float64(ltvBps) / BpsDenominator)
	c := Collateral{RequiredUsd: requiredUsd}
	if unitPriceUsd > 0 {
		c.RequiredUnits = requiredUsd / unitPriceUsd
	}
	return c
}

// Terms carries the pool parameters the engine prices against. It is a
// value snapshot: mutating a pool after taking Terms does not affect it.
type Terms struct {
	AprBps            int
	LtvBps            int
	TenureMonths      []int
	AllowedKinds      []CollateralKind
	MinLoanUsd        float64
	MaxLoanUsd        float64
	TotalLiquidityUsd float64
	TotalBorrowedUsd  float64
}

// RemainingLiquidity is the USD still available to lend, floored at zero
// even if the stored totals are inconsistent.
func (t Terms) RemainingLiquidity() float64 {
	if r := t.TotalLiquidityUsd - t.TotalBorrowedUsd; r > 0 {
		return r
	}
	return 0
}

// ValidateRequest checks a loan request against the pool terms. Checks run
// in a fixed order and the first failure wins: tenure, collateral kind,
// amount range, then liquidity.
func (t Terms) ValidateRequest(principalUsd float64, tenureMonths int, kind CollateralKind) error {
	ok := false
	for _, m := range t.TenureMonths {
		if m == tenureMonths {
			ok = true
			break
		}
	}
	if !ok {
		return ErrInvalidTenure
	}
	ok = false
	for _, k := range t.AllowedKinds {
		if k == kind {
			ok = true
			break
		}
	}
	if !ok {
		return ErrDisallowedCollateral
	}
	if principalUsd < t.MinLoanUsd || principalUsd > t.MaxLoanUsd {
		return ErrAmountOutOfRange
	}
	if principalUsd > t.RemainingLiquidity() {
		return ErrInsufficientLiquidity
	}
	return nil
}

// AdjustScoreOnRepay returns the borrower's score after a repayment: a flat
// bonus regardless of loan size, tenure or timeliness, capped at the ceiling.
func AdjustScoreOnRepay(score int) int {
	score += repayScoreBonus
	if score > MaxCreditScore {
		return MaxCreditScore
	}
	return score
}

// ScoreCategory maps a numeric credit score to its display label.
func ScoreCategory(score int) string {
	switch {
	case score >= 750:
		return "Excellent"
	case score >= 650:
		return "Good"
	case score >= 550:
		return "Fair"
	default:
		return "Poor"
	}
}

package pool

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"credora-backend/internal/pricing"
)

var (
	ErrNotFound = errors.New("pool not found")
)

// Pool is a lending offer. All terms are fixed at creation; only
// TotalBorrowedUsd moves, via the repository's atomic reservation.
type Pool struct {
	ID          uint64 `gorm:"primaryKey;column:id" json:"-"`
	PoolID      string `gorm:"size:32;uniqueIndex:ux_pools_pool_id_active" json:"pool_id"`
	Name        string `gorm:"size:120" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	AprBps int `gorm:"not null" json:"apr_bps"`
	LtvBps int `gorm:"not null" json:"ltv_bps"`

	TenureMonths []int                    `gorm:"serializer:json;type:text" json:"tenure_months"`
	AllowedKinds []pricing.CollateralKind `gorm:"serializer:json;type:text;column:allowed_collateral_kinds" json:"allowed_collateral_kinds"`
	// Empty means all symbols of the allowed kinds are accepted.
	AllowedSymbols []string `gorm:"serializer:json;type:text" json:"allowed_symbols"`

	MinLoanUsd        float64 `gorm:"type:decimal(18,2)" json:"min_loan_usd"`
	MaxLoanUsd        float64 `gorm:"type:decimal(18,2)" json:"max_loan_usd"`
	TotalLiquidityUsd float64 `gorm:"type:decimal(18,2)" json:"total_liquidity_usd"`
	TotalBorrowedUsd  float64 `gorm:"type:decimal(18,2);default:0" json:"total_borrowed_usd"`

	// Immutable after creation.
	OwnerID   string `gorm:"size:32;index:idx_pools_owner" json:"owner_id"`
	OwnerName string `gorm:"size:120" json:"owner_name"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Pool) TableName() string { return "pools" }

// Terms snapshots the pool parameters for the pricing engine.
func (p *Pool) Terms() pricing.Terms {
	return pricing.Terms{
		AprBps:            p.AprBps,
		LtvBps:            p.LtvBps,
		TenureMonths:      p.TenureMonths,
		AllowedKinds:      p.AllowedKinds,
		MinLoanUsd:        p.MinLoanUsd,
		MaxLoanUsd:        p.MaxLoanUsd,
		TotalLiquidityUsd: p.TotalLiquidityUsd,
		TotalBorrowedUsd:  p.TotalBorrowedUsd,
	}
}

// AcceptsSymbol reports whether the pool's symbol allow-list admits symbol.
// An empty allow-list admits every symbol of the allowed kinds.
func (p *Pool) AcceptsSymbol(symbol string) bool {
	if len(p.AllowedSymbols) == 0 {
		return true
	}
	for _, s := range p.AllowedSymbols {
		if s == symbol {
			return true
		}
	}
	return false
}

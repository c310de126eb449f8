package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	poolDomain "credora-backend/internal/domain/pool"
	"credora-backend/internal/pricing"
)

type PoolRepository struct{ db *gorm.DB }

func NewPoolRepository(db *gorm.DB) *PoolRepository { return &PoolRepository{db: db} }

func (r *PoolRepository) Create(ctx context.Context, p *poolDomain.Pool) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PoolRepository) GetByPoolID(ctx context.Context, poolID string) (*poolDomain.Pool, error) {
	var out poolDomain.Pool
	res := r.db.WithContext(ctx).Where("pool_id = ?", poolID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, poolDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *PoolRepository) List(ctx context.Context) ([]poolDomain.Pool, error) {
	var out []poolDomain.Pool
	res := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out)
	return out, res.Error
}

// ReserveLiquidity moves total_borrowed_usd up by amountUsd in a single
// conditional UPDATE, so the liquidity check and the increment cannot be
// split by a concurrent funding. Zero rows affected means the reservation
// does not fit (or the pool is gone).
func (r *PoolRepository) ReserveLiquidity(ctx context.Context, poolID string, amountUsd float64) error {
	res := r.db.WithContext(ctx).Model(&poolDomain.Pool{}).
		Where("pool_id = ? AND total_borrowed_usd + ? <= total_liquidity_usd", poolID, amountUsd).
		UpdateColumn("total_borrowed_usd", gorm.Expr("total_borrowed_usd + ?", amountUsd))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pricing.ErrInsufficientLiquidity
	}
	return nil
}

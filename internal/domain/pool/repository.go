package pool

import "context"

type Repository interface {
	Create(ctx context.Context, p *Pool) error
	GetByPoolID(ctx context.Context, poolID string) (*Pool, error)
	// List returns pools newest first.
	List(ctx context.Context) ([]Pool, error)
	// ReserveLiquidity atomically adds amountUsd to the pool's borrowed
	// total, but only when the result stays within total liquidity. Returns
	// pricing.ErrInsufficientLiquidity when the reservation does not fit.
	ReserveLiquidity(ctx context.Context, poolID string, amountUsd float64) error
}

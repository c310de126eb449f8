// Package poolmock provides a function-field test double for the pool
// repository.
package poolmock

import (
	"context"
	"errors"

	domain "credora-backend/internal/domain/pool"
)

type Repo struct {
	CreateFn           func(ctx context.Context, p *domain.Pool) error
	GetByPoolIDFn      func(ctx context.Context, poolID string) (*domain.Pool, error)
	ListFn             func(ctx context.Context) ([]domain.Pool, error)
	ReserveLiquidityFn func(ctx context.Context, poolID string, amountUsd float64) error
}

func (m *Repo) Create(ctx context.Context, p *domain.Pool) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByPoolID(ctx context.Context, poolID string) (*domain.Pool, error) {
	if m.GetByPoolIDFn != nil {
		return m.GetByPoolIDFn(ctx, poolID)
	}
	return nil, errors.New("not implemented")
}

func (m *Repo) List(ctx context.Context) ([]domain.Pool, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *Repo) ReserveLiquidity(ctx context.Context, poolID string, amountUsd float64) error {
	if m.ReserveLiquidityFn != nil {
		return m.ReserveLiquidityFn(ctx, poolID, amountUsd)
	}
	return nil
}

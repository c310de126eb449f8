package uow

import (
	"context"

	"credora-backend/internal/domain/borrower"
	"credora-backend/internal/domain/loan"
	"credora-backend/internal/domain/pool"
)

type Repos struct {
	Pools    pool.Repository
	Loans    loan.Repository
	Accounts borrower.Repository
}

// UnitOfWork runs repository calls inside one db transaction.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the loan row first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}

package loan

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	borrowerDomain "credora-backend/internal/domain/borrower"
	loanDomain "credora-backend/internal/domain/loan"
	"credora-backend/internal/domain/uow"
	"credora-backend/internal/pricing"
	"credora-backend/pkg/id"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnknownSymbol = errors.New("no price available for collateral symbol")
)

type Usecase struct {
	loans  loanDomain.Repository
	uow    uow.UnitOfWork
	prices pricing.PriceFeed
}

func NewUsecase(loans loanDomain.Repository, tx uow.UnitOfWork, prices pricing.PriceFeed) *Usecase {
	return &Usecase{loans: loans, uow: tx, prices: prices}
}

type FundLoanInput struct {
	PoolID         string
	BorrowerID     string
	PrincipalUsd   float64
	TenureMonths   int
	CollateralKind pricing.CollateralKind
	Symbol         string
	CollateralLink string
}

type CollateralDTO struct {
	Kind        pricing.CollateralKind `json:"kind"`
	Symbol      string                 `json:"symbol"`
	Amount      float64                `json:"amount"`
	RequiredUsd float64                `json:"required_usd"`
	Link        string                 `json:"link"`
}

type LoanDTO struct {
	LoanID            string        `json:"loan_id"`
	PoolID            string        `json:"pool_id"`
	BorrowerID        string        `json:"borrower_id"`
	PrincipalUsd      float64       `json:"principal_usd"`
	AprBps            int           `json:"apr_bps"`
	TenureMonths      int           `json:"tenure_months"`
	InterestUsd       float64       `json:"interest_usd"`
	TotalPayoffUsd    float64       `json:"total_payoff_usd"`
	Status            string        `json:"status"`
	Collateral        CollateralDTO `json:"collateral"`
	CreditScoreBefore int           `json:"credit_score_before"`
	CreditScoreAfter  int           `json:"credit_score_after"`
	FundedAt          time.Time     `json:"funded_at"`
	RepaidAt          *time.Time    `json:"repaid_at,omitempty"`
}

func toDTO(l *loanDomain.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:         l.LoanID,
		PoolID:         l.PoolID,
		BorrowerID:     l.BorrowerID,
		PrincipalUsd:   l.PrincipalUsd,
		AprBps:         l.AprBps,
		TenureMonths:   l.TenureMonths,
		InterestUsd:    pricing.Interest(l.PrincipalUsd, l.AprBps, l.TenureMonths),
		TotalPayoffUsd: pricing.TotalPayoff(l.PrincipalUsd, l.AprBps, l.TenureMonths),
		Status:         string(l.Status),
		Collateral: CollateralDTO{
			Kind:        l.Collateral.Kind,
			Symbol:      l.Collateral.Symbol,
			Amount:      l.Collateral.Amount,
			RequiredUsd: l.Collateral.RequiredUsd,
			Link:        l.Collateral.Link,
		},
		CreditScoreBefore: l.CreditScoreBefore,
		CreditScoreAfter:  l.CreditScoreAfter,
		FundedAt:          l.FundedAt,
		RepaidAt:          l.RepaidAt,
	}
}

// Fund validates a loan request against the pool terms, sizes the
// collateral snapshot and creates the ACTIVE loan. The liquidity check and
// the borrowed-total increment happen as one conditional update inside the
// transaction, so two concurrent fundings cannot both pass on the same
// remaining liquidity.
func (u *Usecase) Fund(ctx context.Context, in FundLoanInput) (*LoanDTO, error) {
	if in.PoolID == "" || in.BorrowerID == "" || in.PrincipalUsd <= 0 || in.TenureMonths <= 0 {
		return nil, ErrInvalidInput
	}

	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		p, err := r.Pools.GetByPoolID(ctx, in.PoolID)
		if err != nil {
			return err
		}
		account, err := r.Accounts.GetByAccountID(ctx, in.BorrowerID)
		if err != nil {
			return err
		}
		if account.Role != borrowerDomain.RoleBorrower {
			return borrowerDomain.ErrWrongRole
		}

		if !p.AcceptsSymbol(in.Symbol) {
			return pricing.ErrDisallowedCollateral
		}
		if err := p.Terms().ValidateRequest(in.PrincipalUsd, in.TenureMonths, in.CollateralKind); err != nil {
			return err
		}

		asset, ok := u.prices.Quote(in.Symbol)
		if !ok {
			return ErrUnknownSymbol
		}
		// the declared kind must be the symbol's real one; otherwise a
		// disallowed asset could fund under an allowed label
		if asset.Kind != in.CollateralKind {
			return pricing.ErrDisallowedCollateral
		}
		sized := pricing.RequiredCollateral(in.PrincipalUsd, p.LtvBps, asset.UnitPriceUsd)

		// authoritative liquidity check; the read above was only a snapshot
		if err := r.Pools.ReserveLiquidity(ctx, p.PoolID, in.PrincipalUsd); err != nil {
			return err
		}

		now := time.Now().UTC()
		l := &loanDomain.Loan{
			LoanID:       id.NewID32(),
			PoolID:       p.PoolID,
			BorrowerID:   account.AccountID,
			PrincipalUsd: in.PrincipalUsd,
			AprBps:       p.AprBps,
			TenureMonths: in.TenureMonths,
			Status:       loanDomain.StatusActive,
			Collateral: loanDomain.Collateral{
				Kind:        in.CollateralKind,
				Symbol:      in.Symbol,
				Amount:      sized.RequiredUnits,
				RequiredUsd: sized.RequiredUsd,
				Link:        in.CollateralLink,
			},
			CreditScoreBefore: account.CreditScore,
			CreditScoreAfter:  account.CreditScore,
			FundedAt:          now,
			StatusUpdatedAt:   now,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("loan_id", dto.LoanID).
		Str("pool_id", dto.PoolID).
		Str("borrower_id", dto.BorrowerID).
		Float64("principal_usd", dto.PrincipalUsd).
		Msg("loan funded")
	return dto, nil
}

type RepayInput struct {
	LoanID     string
	BorrowerID string
}

// Repay transitions an ACTIVE loan to REPAID and applies the flat
// credit-score bonus to the borrower, all inside one transaction.
func (u *Usecase) Repay(ctx context.Context, in RepayInput) (*LoanDTO, error) {
	if in.LoanID == "" || in.BorrowerID == "" {
		return nil, ErrInvalidInput
	}

	var dto *LoanDTO
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loanDomain.Loan) error {
		if l.BorrowerID != in.BorrowerID {
			return loanDomain.ErrNotBorrower
		}
		switch l.Status {
		case loanDomain.StatusActive:
			// only observed transition: ACTIVE -> REPAID
		case loanDomain.StatusRepaid:
			return loanDomain.ErrAlreadyRepaid
		default:
			return loanDomain.ErrInvalidTransition
		}

		account, err := r.Accounts.GetByAccountIDForUpdate(ctx, l.BorrowerID)
		if err != nil {
			return err
		}
		account.CreditScore = pricing.AdjustScoreOnRepay(account.CreditScore)
		if err := r.Accounts.Save(ctx, account); err != nil {
			return err
		}

		now := time.Now().UTC()
		l.Status = loanDomain.StatusRepaid
		l.RepaidAt = &now
		l.StatusUpdatedAt = now
		l.CreditScoreAfter = account.CreditScore
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("loan_id", dto.LoanID).
		Int("credit_score_after", dto.CreditScoreAfter).
		Msg("loan repaid")
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

func (u *Usecase) List(ctx context.Context, borrowerID string) ([]LoanDTO, error) {
	loans, err := u.loans.List(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(loans))
	for i := range loans {
		out = append(out, *toDTO(&loans[i]))
	}
	return out, nil
}

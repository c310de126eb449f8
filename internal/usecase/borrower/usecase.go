package borrower

import (
	"context"
	"errors"
	"time"

	borrowerDomain "credora-backend/internal/domain/borrower"
	"credora-backend/internal/pricing"
	"credora-backend/pkg/id"
)

var ErrInvalidRole = errors.New("role must be BORROWER or LENDER")

type Usecase struct{ accounts borrowerDomain.Repository }

func NewUsecase(accounts borrowerDomain.Repository) *Usecase {
	return &Usecase{accounts: accounts}
}

type RegisterInput struct {
	Email         string
	DisplayName   string
	Role          borrowerDomain.Role
	WalletAddress string
}

type AccountDTO struct {
	AccountID     string    `json:"account_id"`
	Email         string    `json:"email,omitempty"`
	DisplayName   string    `json:"display_name"`
	Role          string    `json:"role"`
	WalletAddress string    `json:"wallet_address,omitempty"`
	CreditScore   int       `json:"credit_score"`
	ScoreCategory string    `json:"score_category"`
	CreatedAt     time.Time `json:"created_at"`
}

func toDTO(a *borrowerDomain.Account) *AccountDTO {
	return &AccountDTO{
		AccountID:     a.AccountID,
		Email:         a.Email,
		DisplayName:   a.DisplayName,
		Role:          string(a.Role),
		WalletAddress: a.WalletAddress,
		CreditScore:   a.CreditScore,
		ScoreCategory: pricing.ScoreCategory(a.CreditScore),
		CreatedAt:     a.CreatedAt,
	}
}

func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*AccountDTO, error) {
	if in.Role != borrowerDomain.RoleBorrower && in.Role != borrowerDomain.RoleLender {
		return nil, ErrInvalidRole
	}
	a := &borrowerDomain.Account{
		AccountID:     id.NewID32(),
		Email:         in.Email,
		DisplayName:   in.DisplayName,
		Role:          in.Role,
		WalletAddress: in.WalletAddress,
		CreditScore:   pricing.InitialCreditScore,
	}
	if err := u.accounts.Create(ctx, a); err != nil {
		return nil, err
	}
	return toDTO(a), nil
}

func (u *Usecase) Get(ctx context.Context, accountID string) (*AccountDTO, error) {
	a, err := u.accounts.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return toDTO(a), nil
}

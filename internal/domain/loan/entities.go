package loan

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"credora-backend/internal/pricing"
)

var (
	ErrNotFound          = errors.New("loan not found")
	ErrAlreadyRepaid     = errors.New("loan already repaid")
	ErrInvalidTransition = errors.New("invalid loan status transition")
	ErrNotBorrower       = errors.New("loan belongs to another borrower")
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusRepaid    Status = "REPAID"
	StatusDefaulted Status = "DEFAULTED"
	StatusCanceled  Status = "CANCELED"
)

// Collateral is the sizing snapshot taken at funding time plus the
// borrower-supplied external proof link.
type Collateral struct {
	Kind        pricing.CollateralKind `gorm:"size:16;column:kind" json:"kind"`
	Symbol      string                 `gorm:"size:16;column:symbol" json:"symbol"`
	Amount      float64                `gorm:"type:decimal(24,8);column:amount" json:"amount"`
	RequiredUsd float64                `gorm:"type:decimal(18,2);column:required_usd" json:"required_usd"`
	Link        string                 `gorm:"type:text;column:link" json:"link"`
}

// Loan is a funded borrowing request. Rate and tenure are copied from the
// pool at funding time; later pool changes must not affect existing loans.
type Loan struct {
	ID     uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID string `gorm:"size:32;uniqueIndex:ux_loans_loan_id_active" json:"loan_id"`

	PoolID     string `gorm:"size:32;index:idx_loans_pool" json:"pool_id"`
	BorrowerID string `gorm:"size:32;index:idx_loans_borrower" json:"borrower_id"`

	PrincipalUsd float64 `gorm:"type:decimal(18,2)" json:"principal_usd"`
	AprBps       int     `gorm:"not null" json:"apr_bps"`
	TenureMonths int     `gorm:"not null" json:"tenure_months"`

	Status Status `gorm:"type:enum('ACTIVE','REPAID','DEFAULTED','CANCELED');default:'ACTIVE'" json:"status"`

	Collateral Collateral `gorm:"embedded;embeddedPrefix:collateral_" json:"collateral"`

	CreditScoreBefore int `json:"credit_score_before"`
	CreditScoreAfter  int `json:"credit_score_after"`

	FundedAt time.Time  `json:"funded_at"`
	RepaidAt *time.Time `json:"repaid_at,omitempty"`

	StatusUpdatedAt time.Time      `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

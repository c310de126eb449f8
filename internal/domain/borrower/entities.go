package borrower

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("account not found")
	ErrWrongRole = errors.New("account role not permitted for this action")
)

type Role string

const (
	RoleBorrower Role = "BORROWER"
	RoleLender   Role = "LENDER"
)

// Account is a server-side identity record. Identity travels explicitly
// with each request (Ax-Actor-Id header); there is no ambient session and no
// real authentication in the MVP.
type Account struct {
	ID        uint64 `gorm:"primaryKey;column:id" json:"-"`
	AccountID string `gorm:"size:32;uniqueIndex:ux_accounts_account_id_active" json:"account_id"`

	Email         string `gorm:"size:120;index:idx_accounts_email" json:"email,omitempty"`
	DisplayName   string `gorm:"size:120" json:"display_name"`
	Role          Role   `gorm:"type:enum('BORROWER','LENDER')" json:"role"`
	WalletAddress string `gorm:"size:120" json:"wallet_address,omitempty"`

	CreditScore int `gorm:"not null" json:"credit_score"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Account) TableName() string { return "accounts" }

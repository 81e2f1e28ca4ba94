package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Wallet struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OwnerID          uuid.UUID       `gorm:"type:uuid;not null;unique" json:"owner_id"`
	PendingBalance   decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"pending_balance"`
	AvailableBalance decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"available_balance"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TransactionType string

const (
	TransactionTypePendingProfit    TransactionType = "PendingProfit"
	TransactionTypeDistributeProfit TransactionType = "DistributeProfit"
	TransactionTypePendingDeduction TransactionType = "PendingDeduction"
	TransactionTypeProductRefund    TransactionType = "ProductRefund"
	TransactionTypeWithdraw         TransactionType = "Withdraw"
	TransactionTypeWithdrawRefund   TransactionType = "WithdrawRefund"
)

type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "Success"
	TransactionStatusPending TransactionStatus = "Pending"
	TransactionStatusFailed  TransactionStatus = "Failed"
)

// Transaction is an append-only ledger row. Amount is signed: credits are
// positive, deductions and withdrawals negative.
type Transaction struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Amount      decimal.Decimal   `gorm:"type:numeric(18,2);not null" json:"amount"`
	Type        TransactionType   `gorm:"size:30;not null;index" json:"type"`
	Status      TransactionStatus `gorm:"size:20;not null" json:"status"`
	WalletID    *uuid.UUID        `gorm:"type:uuid;index" json:"wallet_id,omitempty"`
	OrderID     *uuid.UUID        `gorm:"type:uuid" json:"order_id,omitempty"`
	OrderItemID *uuid.UUID        `gorm:"type:uuid;index" json:"order_item_id,omitempty"`
	Description string            `gorm:"type:text" json:"description"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction represents the direction of money movement
type Direction string

const (
	Deposit  Direction = "DEPOSIT"
	Withdraw Direction = "WITHDRAW"
)

func (d Direction) Valid() bool {
	switch d {
	case Deposit, Withdraw:
		return true
	default:
		return false
	}
}

// Signed returns amount with the sign implied by the direction.
func (d Direction) Signed(amount decimal.Decimal) decimal.Decimal {
	if d == Withdraw {
		return amount.Neg()
	}
	return amount
}

// BankTransaction is a bank record after ingestion. Only MatchedRequestID
// changes after it has been stored.
type BankTransaction struct {
	ID               int64            `json:"id" db:"id"`
	ClubID           int64            `json:"club_id" db:"club_id"`
	AccountRef       string           `json:"account_ref" db:"account_ref"`
	OccurredAt       time.Time        `json:"occurred_at" db:"occurred_at"`
	Direction        Direction        `json:"direction" db:"direction"`
	Amount           decimal.Decimal  `json:"amount" db:"amount"`
	BalanceAfter     *decimal.Decimal `json:"balance_after,omitempty" db:"balance_after"`
	Narrative        string           `json:"narrative" db:"narrative"`
	NaturalKey       string           `json:"natural_key" db:"natural_key"`
	MatchedRequestID *int64           `json:"matched_request_id,omitempty" db:"matched_request_id"`
	Version          int64            `json:"version" db:"version"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

func (t *BankTransaction) IsMatched() bool {
	return t.MatchedRequestID != nil
}

// RawRecord is a transaction as returned by a bank source, before validation.
type RawRecord struct {
	BankTxID     string           `json:"bank_tx_id,omitempty"`
	OccurredAt   time.Time        `json:"occurred_at"`
	Direction    Direction        `json:"direction"`
	Amount       decimal.Decimal  `json:"amount"`
	BalanceAfter *decimal.Decimal `json:"balance_after,omitempty"`
	Narrative    string           `json:"narrative"`
}

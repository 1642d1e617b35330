package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one recognized money movement. Entries are append-only;
// RelatedRequestID is the only field that may be set after insert, once.
type LedgerEntry struct {
	ID               int64           `json:"id" db:"id"`
	ClubID           int64           `json:"club_id" db:"club_id"`
	TransactionID    *int64          `json:"transaction_id,omitempty" db:"transaction_id"`
	Direction        Direction       `json:"direction" db:"direction"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	OccurredAt       time.Time       `json:"occurred_at" db:"occurred_at"`
	RecordedAt       time.Time       `json:"recorded_at" db:"recorded_at"`
	RelatedRequestID *int64          `json:"related_request_id,omitempty" db:"related_request_id"`
	Memo             string          `json:"memo" db:"memo"`
}

// SignedAmount is positive for deposits and negative for withdrawals.
func (e LedgerEntry) SignedAmount() decimal.Decimal {
	return e.Direction.Signed(e.Amount)
}

// EntryForTransaction builds the ledger entry recorded at ingestion time.
func EntryForTransaction(tx *BankTransaction) LedgerEntry {
	id := tx.ID
	return LedgerEntry{
		ClubID:        tx.ClubID,
		TransactionID: &id,
		Direction:     tx.Direction,
		Amount:        tx.Amount,
		OccurredAt:    tx.OccurredAt,
		Memo:          tx.Narrative,
	}
}

// EntryForCash builds the entry for a cash payment acknowledged by hand.
func EntryForCash(req *PaymentRequest, actorID int64, at time.Time) LedgerEntry {
	reqID := req.ID
	return LedgerEntry{
		ClubID:           req.ClubID,
		Direction:        Deposit,
		Amount:           req.ExpectedAmount,
		OccurredAt:       at,
		RelatedRequestID: &reqID,
		Memo:             fmt.Sprintf("cash payment: %s %s (confirmed by %d)", req.MemberName, req.RequestType, actorID),
	}
}

// Balance sums entries in order. It is the only definition of a club balance.
func Balance(entries []LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.SignedAmount())
	}
	return total
}

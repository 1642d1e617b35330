package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OutcomeStatus represents the result of trying to auto-match one transaction
type OutcomeStatus string

const (
	OutcomeMatched   OutcomeStatus = "MATCHED"
	OutcomeUnmatched OutcomeStatus = "UNMATCHED"
	OutcomeSkipped   OutcomeStatus = "SKIPPED"
	OutcomeConflict  OutcomeStatus = "CONFLICT"
)

// MatchOutcome is reported per transaction id passed to auto-match
type MatchOutcome struct {
	TransactionID int64         `json:"transaction_id"`
	Status        OutcomeStatus `json:"status"`
	RequestID     *int64        `json:"request_id,omitempty"`
	Reason        string        `json:"reason,omitempty"`
}

// IngestResult summarizes one ingestion batch. ExistingUnmatchedIDs lists
// already stored deposits of the batch that are still unbound, so a retried
// cycle can match what an interrupted one left behind.
type IngestResult struct {
	NewIDs               []int64 `json:"new_ids"`
	ExistingUnmatchedIDs []int64 `json:"existing_unmatched_ids,omitempty"`
	Duplicates           int     `json:"duplicates"`
	Rejected             int     `json:"rejected"`
}

// MatchCandidates returns the ids auto-match should look at after ingestion.
func (r IngestResult) MatchCandidates() []int64 {
	ids := make([]int64, 0, len(r.NewIDs)+len(r.ExistingUnmatchedIDs))
	ids = append(ids, r.NewIDs...)
	return append(ids, r.ExistingUnmatchedIDs...)
}

// Merge adds the counts and ids of other to r.
func (r *IngestResult) Merge(other IngestResult) {
	r.NewIDs = append(r.NewIDs, other.NewIDs...)
	r.ExistingUnmatchedIDs = append(r.ExistingUnmatchedIDs, other.ExistingUnmatchedIDs...)
	r.Duplicates += other.Duplicates
	r.Rejected += other.Rejected
}

// SyncReport summarizes one sync cycle for a club account
type SyncReport struct {
	CycleID    string         `json:"cycle_id"`
	ClubID     int64          `json:"club_id"`
	AccountRef string         `json:"account_ref"`
	From       time.Time      `json:"from"`
	To         time.Time      `json:"to"`
	Fetched    int            `json:"fetched"`
	Ingest     IngestResult   `json:"ingest"`
	Outcomes   []MatchOutcome `json:"outcomes,omitempty"`
	Matched    int            `json:"matched"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// ClubBalance is the derived balance of a club ledger
type ClubBalance struct {
	ClubID  int64           `json:"club_id"`
	Balance decimal.Decimal `json:"balance"`
	Entries int             `json:"entries"`
	AsOf    time.Time       `json:"as_of"`
}

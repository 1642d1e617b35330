package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club-recon/internal/domain"
)

func TestIngest_DuplicateKeyInSameBatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	result, err := f.ingest.IngestWithResult(ctx, testClub, testAccount, []domain.RawRecord{
		deposit("A", "10000", jan(5)),
		deposit("A", "10000", jan(5)),
	})
	require.NoError(t, err)

	assert.Len(t, result.NewIDs, 1)
	assert.Equal(t, 1, result.Duplicates)
	assert.Zero(t, result.Rejected)

	txs, err := f.store.Transactions.ListByClub(ctx, testClub, false)
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	entries, err := f.store.Ledger.ListByClub(ctx, testClub, nil, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, txs[0].ID, *entries[0].TransactionID)
}

func TestIngest_OverlappingCallsAreNoOps(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first := f.mustIngest(deposit("A", "10000", jan(5)), deposit("B", "250.50", jan(6)))
	assert.Len(t, first, 2)

	second, err := f.ingest.IngestWithResult(ctx, testClub, testAccount, []domain.RawRecord{
		deposit("B", "250.50", jan(6)),
		deposit("C", "75", jan(7)),
	})
	require.NoError(t, err)
	assert.Len(t, second.NewIDs, 1)
	assert.Equal(t, 1, second.Duplicates)

	balance, err := f.ledger.Balance(ctx, testClub)
	require.NoError(t, err)
	assert.Equal(t, 3, balance.Entries)
	assert.True(t, dec("10325.50").Equal(balance.Balance), balance.Balance.String())
}

func TestIngest_DerivedKeyCollidesOnRefetch(t *testing.T) {
	f := newFixture()

	noID := deposit("", "500", jan(8))
	noID.Narrative = "CASH DEPOSIT"

	assert.Len(t, f.mustIngest(noID), 1)
	assert.Empty(t, f.mustIngest(noID))
}

func TestIngest_DerivedKeyKeepsSubSeconds(t *testing.T) {
	f := newFixture()

	first := deposit("", "20", jan(9).Add(100*time.Millisecond))
	second := deposit("", "20", jan(9).Add(700*time.Millisecond))
	first.Narrative, second.Narrative = "POS", "POS"

	assert.NotEqual(t, NaturalKey(testAccount, first), NaturalKey(testAccount, second))
	assert.Len(t, f.mustIngest(first, second), 2)
}

func TestIngest_ReportsStoredUnmatchedDeposits(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ids := f.mustIngest(
		deposit("FLOAT", "100", jan(5)),
		deposit("BOUND", "200", jan(5)),
		withdrawal("OUT", "30", jan(5)),
	)
	require.Len(t, ids, 3)

	f.mem.Put(pendingRequest(1, "200", jan(5), 10))
	outcomes, err := f.recon.AutoMatch(ctx, testClub, []int64{ids[1]})
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeMatched, outcomes[0].Status)

	result, err := f.ingest.IngestWithResult(ctx, testClub, testAccount, []domain.RawRecord{
		deposit("FLOAT", "100", jan(5)),
		deposit("BOUND", "200", jan(5)),
		withdrawal("OUT", "30", jan(5)),
		deposit("NEW", "5", jan(6)),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Duplicates)
	assert.Equal(t, []int64{ids[0]}, result.ExistingUnmatchedIDs)
	require.Len(t, result.NewIDs, 1)
	assert.Equal(t, []int64{result.NewIDs[0], ids[0]}, result.MatchCandidates())
}

func TestIngest_MalformedRecordsAreRejectedIndividually(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	missingAmount := deposit("M1", "1", jan(5))
	missingAmount.Amount = decimal.Decimal{}
	missingTime := deposit("M2", "10", jan(5))
	missingTime.OccurredAt = time.Time{}
	tooPrecise := deposit("M3", "10.005", jan(5))
	badDirection := deposit("M4", "10", jan(5))
	badDirection.Direction = "SIDEWAYS"

	result, err := f.ingest.IngestWithResult(ctx, testClub, testAccount, []domain.RawRecord{
		missingAmount,
		deposit("OK1", "100", jan(5)),
		missingTime,
		tooPrecise,
		badDirection,
		withdrawal("OK2", "40", jan(6)),
	})
	require.NoError(t, err)

	assert.Len(t, result.NewIDs, 2)
	assert.Equal(t, 4, result.Rejected)

	balance, err := f.ledger.Balance(ctx, testClub)
	require.NoError(t, err)
	assert.True(t, dec("60").Equal(balance.Balance))
}

func TestIngest_RequiresClubAndAccount(t *testing.T) {
	f := newFixture()

	_, err := f.ingest.Ingest(context.Background(), 0, testAccount, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)

	_, err = f.ingest.Ingest(context.Background(), testClub, "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)
}

func TestNaturalKey(t *testing.T) {
	withID := deposit("TX-9", "10", jan(5))
	assert.Equal(t, testAccount+":TX-9", NaturalKey(testAccount, withID))

	a := deposit("", "10", jan(5))
	b := deposit("", "10.00", jan(5))
	assert.Equal(t, NaturalKey(testAccount, a), NaturalKey(testAccount, b), "amount scale must not change the key")

	c := a
	c.Narrative = "different"
	assert.NotEqual(t, NaturalKey(testAccount, a), NaturalKey(testAccount, c))
	assert.NotEqual(t, NaturalKey(testAccount, a), NaturalKey("ACC-002", a))

	d := a
	d.Direction = domain.Withdraw
	assert.NotEqual(t, NaturalKey(testAccount, a), NaturalKey(testAccount, d))
}

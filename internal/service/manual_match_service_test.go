package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club-recon/internal/domain"
)

const actor int64 = 42

func TestConfirmMatch_ExpiredRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	expired := pendingRequest(1, "100", jan(1), 10)
	expired.Status = domain.StatusExpired
	f.mem.Put(expired)

	// far outside the window, amount differs: a human may still confirm
	ids := f.mustIngest(deposit("T", "95", jan(28)))

	req, err := f.manual.ConfirmMatch(ctx, 1, ids[0], actor)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMatched, req.Status)
	assert.Equal(t, domain.Confirmed, *req.MatchType)
	assert.Equal(t, actor, *req.MatchedBy)
	assert.Equal(t, ids[0], *req.MatchedTransactionID)

	entry, err := f.store.Ledger.GetByTransactionID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, int64(1), *entry.RelatedRequestID)

	tx, err := f.store.Transactions.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, int64(1), *tx.MatchedRequestID)
}

func TestConfirmMatch_Rejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.mem.Put(pendingRequest(1, "100", jan(5), 10))
	f.mem.Put(pendingRequest(2, "100", jan(5), 10))
	f.mem.Put(pendingRequest(3, "100", jan(5), 10))

	ids := f.mustIngest(deposit("D1", "100", jan(5)), withdrawal("W1", "100", jan(5)), deposit("D2", "100", jan(5)))
	foreign, err := f.ingest.Ingest(ctx, otherClub, "ACC-OTHER", []domain.RawRecord{deposit("F", "100", jan(5))})
	require.NoError(t, err)

	_, err = f.manual.ConfirmMatch(ctx, 1, ids[0], actor)
	require.NoError(t, err)

	t.Run("request already matched", func(t *testing.T) {
		before, err := f.store.Requests.GetByID(ctx, 1)
		require.NoError(t, err)

		_, err = f.manual.ConfirmMatch(ctx, 1, ids[2], actor)
		assert.ErrorIs(t, err, domain.ErrRequestNotMatchable)

		after, err := f.store.Requests.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("transaction bound elsewhere", func(t *testing.T) {
		_, err := f.manual.ConfirmMatch(ctx, 2, ids[0], actor)
		assert.ErrorIs(t, err, domain.ErrTransactionAlreadyMatched)
	})

	t.Run("withdrawal", func(t *testing.T) {
		_, err := f.manual.ConfirmMatch(ctx, 2, ids[1], actor)
		assert.ErrorIs(t, err, domain.ErrTransactionNotDeposit)
	})

	t.Run("other club", func(t *testing.T) {
		_, err := f.manual.ConfirmMatch(ctx, 3, foreign[0], actor)
		assert.ErrorIs(t, err, domain.ErrClubMismatch)
	})

	t.Run("unknown ids", func(t *testing.T) {
		_, err := f.manual.ConfirmMatch(ctx, 99, ids[2], actor)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = f.manual.ConfirmMatch(ctx, 2, 999, actor)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	for _, id := range []int64{2, 3} {
		req, err := f.store.Requests.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, req.Status)
	}
}

func TestConfirmManualCashPayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	expired := pendingRequest(1, "150.25", jan(1), 10)
	expired.Status = domain.StatusExpired
	f.mem.Put(expired)
	f.mustIngest(deposit("D", "1000", jan(2)))

	req, entry, err := f.manual.ConfirmManualCashPayment(ctx, 1, actor)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusMatched, req.Status)
	assert.Equal(t, domain.ManualCash, *req.MatchType)
	assert.Nil(t, req.MatchedTransactionID)
	assert.Equal(t, actor, *req.MatchedBy)

	assert.Nil(t, entry.TransactionID)
	assert.Equal(t, domain.Deposit, entry.Direction)
	assert.True(t, dec("150.25").Equal(entry.Amount))
	assert.Equal(t, int64(1), *entry.RelatedRequestID)
	assert.Contains(t, entry.Memo, "cash")

	balance, err := f.ledger.Balance(ctx, testClub)
	require.NoError(t, err)
	assert.Equal(t, 2, balance.Entries)
	assert.True(t, dec("1150.25").Equal(balance.Balance))

	_, _, err = f.manual.ConfirmManualCashPayment(ctx, 1, actor)
	assert.ErrorIs(t, err, domain.ErrRequestNotMatchable)

	balance, err = f.ledger.Balance(ctx, testClub)
	require.NoError(t, err)
	assert.Equal(t, 2, balance.Entries, "a rejected cash confirmation must not add money")
}

func TestManualMatch_ConcurrentCallsOnlyOneWins(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.mem.Put(pendingRequest(1, "100", jan(5), 10))

	var records []domain.RawRecord
	for i := 0; i < 8; i++ {
		records = append(records, deposit(string(rune('a'+i)), "100", jan(5)))
	}
	ids := f.mustIngest(records...)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, txID int64) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = f.manual.ConfirmMatch(ctx, 1, txID, actor)
			} else {
				_, _, err = f.manual.ConfirmManualCashPayment(ctx, 1, actor)
			}
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else {
				failures = append(failures, err)
			}
		}(i, id)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	for _, err := range failures {
		assert.ErrorIs(t, err, domain.ErrRequestNotMatchable)
	}

	entries, err := f.store.Ledger.ListByClub(ctx, testClub, nil, nil)
	require.NoError(t, err)
	attached := 0
	for _, e := range entries {
		if e.RelatedRequestID != nil {
			attached++
		}
	}
	assert.Equal(t, 1, attached)
}

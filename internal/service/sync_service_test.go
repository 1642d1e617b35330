package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"club-recon/internal/bank"
	"club-recon/internal/domain"
	"club-recon/internal/events"
	"club-recon/internal/lease"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) FetchTransactions(ctx context.Context, accountRef string, from, to time.Time) ([]domain.RawRecord, error) {
	args := m.Called(ctx, accountRef, from, to)
	records, _ := args.Get(0).([]domain.RawRecord)
	return records, args.Error(1)
}

func at(want time.Time) interface{} {
	return mock.MatchedBy(func(got time.Time) bool { return got.Equal(want) })
}

// cancellingIngest cancels the cycle right after a successful ingest.
type cancellingIngest struct {
	IngestService
	cancel context.CancelFunc
}

func (c cancellingIngest) IngestWithResult(ctx context.Context, clubID int64, accountRef string, records []domain.RawRecord) (*domain.IngestResult, error) {
	result, err := c.IngestService.IngestWithResult(ctx, clubID, accountRef, records)
	c.cancel()
	return result, err
}

type syncFixture struct {
	*fixture
	source *mockSource
	pub    *mockPublisher
	leases *lease.LocalManager
	now    time.Time
}

func newSyncFixture() *syncFixture {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)
	return &syncFixture{
		fixture: newFixture(),
		source:  &mockSource{},
		pub:     pub,
		leases:  lease.NewLocalManager(),
		now:     time.Date(2024, time.February, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *syncFixture) service(ingest IngestService) SyncService {
	registry := bank.NewStaticRegistry(
		map[string]bank.TransactionSource{"mock": f.source},
		[]bank.Account{{Ref: testAccount, ClubID: testClub, Provider: "mock"}},
	)
	if ingest == nil {
		ingest = f.ingest
	}
	svc := NewSyncService(registry, f.store.Ledger, ingest, f.recon, f.leases, f.pub, SyncOptions{
		FetchTimeout:    time.Second,
		DefaultLookback: 30 * 24 * time.Hour,
	}).(*syncService)
	svc.now = func() time.Time { return f.now }
	return svc
}

func TestSync_FirstSyncUsesLookbackAndMatches(t *testing.T) {
	f := newSyncFixture()
	ctx := context.Background()
	f.mem.Put(pendingRequest(1, "10000", jan(3), 10))

	f.source.On("FetchTransactions", mock.Anything, testAccount, at(f.now.AddDate(0, 0, -30)), at(f.now)).
		Return([]domain.RawRecord{
			deposit("A", "10000", jan(5)),
			deposit("A", "10000", jan(5)),
			withdrawal("B", "500", jan(6)),
		}, nil).Once()

	report, err := f.service(nil).Sync(ctx, SyncRequest{ClubID: testClub, AccountRef: testAccount})
	require.NoError(t, err)
	f.source.AssertExpectations(t)

	assert.NotEmpty(t, report.CycleID)
	assert.Equal(t, 3, report.Fetched)
	assert.Len(t, report.Ingest.NewIDs, 2)
	assert.Equal(t, 1, report.Ingest.Duplicates)
	assert.Equal(t, 1, report.Matched)

	req, err := f.store.Requests.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMatched, req.Status)

	var types []events.Type
	for _, ev := range f.pub.published() {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []events.Type{events.RequestMatched, events.SyncCompleted}, types)
}

func TestSync_ContinuesFromLatestBankEntry(t *testing.T) {
	f := newSyncFixture()
	ctx := context.Background()

	f.mustIngest(deposit("OLD", "10", jan(20)), deposit("LATEST", "10", jan(25)))
	f.mem.Put(pendingRequest(1, "99", jan(29), 10))
	// cash entries do not move the window
	_, _, err := f.manual.ConfirmManualCashPayment(ctx, 1, actor)
	require.NoError(t, err)

	from := time.Date(2024, time.January, 25, 0, 0, 0, 0, time.UTC)
	f.source.On("FetchTransactions", mock.Anything, testAccount, at(from), at(f.now)).
		Return([]domain.RawRecord{
			deposit("LATEST", "10", jan(25)),
			deposit("NEW", "20", jan(30)),
		}, nil).Once()

	report, err := f.service(nil).Sync(ctx, SyncRequest{ClubID: testClub, AccountRef: testAccount})
	require.NoError(t, err)
	f.source.AssertExpectations(t)

	assert.Len(t, report.Ingest.NewIDs, 1)
	assert.Equal(t, 1, report.Ingest.Duplicates)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, domain.OutcomeUnmatched, report.Outcomes[0].Status)
}

func TestSync_FetchFailureLeavesStateIntact(t *testing.T) {
	f := newSyncFixture()
	ctx := context.Background()
	f.mustIngest(deposit("KEEP", "10", jan(25)))

	f.source.On("FetchTransactions", mock.Anything, testAccount, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset")).Once()

	report, err := f.service(nil).Sync(ctx, SyncRequest{ClubID: testClub, AccountRef: testAccount})
	assert.ErrorIs(t, err, domain.ErrSourceFetch)
	assert.Nil(t, report)

	balance, err := f.ledger.Balance(ctx, testClub)
	require.NoError(t, err)
	assert.Equal(t, 1, balance.Entries)

	evs := f.pub.published()
	require.Len(t, evs, 1)
	assert.Equal(t, events.SyncFailed, evs[0].Type)
	assert.Equal(t, "fetch", evs[0].Payload.(SyncFailedPayload).Stage)
}

func TestSync_FetchIsBoundedByTimeout(t *testing.T) {
	f := newSyncFixture()

	f.source.On("FetchTransactions", mock.Anything, testAccount, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			_, ok := ctx.Deadline()
			assert.True(t, ok, "fetch must carry a deadline")
		}).
		Return([]domain.RawRecord{}, nil).Once()

	_, err := f.service(nil).Sync(context.Background(), SyncRequest{AccountRef: testAccount})
	require.NoError(t, err)
}

func TestSync_CancelledBeforeMatchKeepsIngestedRecords(t *testing.T) {
	f := newSyncFixture()
	f.mem.Put(pendingRequest(1, "100", jan(25), 10))

	f.source.On("FetchTransactions", mock.Anything, testAccount, mock.Anything, mock.Anything).
		Return([]domain.RawRecord{deposit("X", "100", jan(25))}, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	report, err := f.service(cancellingIngest{IngestService: f.ingest, cancel: cancel}).
		Sync(ctx, SyncRequest{ClubID: testClub, AccountRef: testAccount})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Len(t, report.Ingest.NewIDs, 1)
	assert.Empty(t, report.Outcomes)

	req, err := f.store.Requests.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, req.Status)

	// the retried cycle sees the deposit as a duplicate and still matches it
	f.source.On("FetchTransactions", mock.Anything, testAccount, mock.Anything, mock.Anything).
		Return([]domain.RawRecord{deposit("X", "100", jan(25))}, nil).Once()

	retry, err := f.service(nil).Sync(context.Background(), SyncRequest{ClubID: testClub, AccountRef: testAccount})
	require.NoError(t, err)
	assert.Empty(t, retry.Ingest.NewIDs)
	assert.Equal(t, report.Ingest.NewIDs, retry.Ingest.ExistingUnmatchedIDs)
	assert.Equal(t, 1, retry.Matched)

	req, err = f.store.Requests.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMatched, req.Status)
	require.NotNil(t, req.MatchedTransactionID)
	assert.Equal(t, report.Ingest.NewIDs[0], *req.MatchedTransactionID)
}

func TestSync_RetryMatchesDepositLeftAfterConflict(t *testing.T) {
	f := newSyncFixture()
	f.mem.Put(pendingRequest(1, "100", jan(25), 10))

	// every bind of the first cycle loses its compare-and-set
	flaky := &flakyMatches{MatchRepository: f.store.Matches, failures: DefaultMaxRetries + 1}
	store := *f.store
	store.Matches = flaky
	f.recon = NewReconciliationService(&store, nil, nil, DefaultMaxRetries)

	f.source.On("FetchTransactions", mock.Anything, testAccount, mock.Anything, mock.Anything).
		Return([]domain.RawRecord{deposit("X", "100", jan(25))}, nil).Twice()

	report, err := f.service(nil).Sync(context.Background(), SyncRequest{AccountRef: testAccount})
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
	require.NotNil(t, report)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, domain.OutcomeConflict, report.Outcomes[0].Status)

	retry, err := f.service(nil).Sync(context.Background(), SyncRequest{AccountRef: testAccount})
	require.NoError(t, err)
	assert.Equal(t, 1, retry.Matched)

	req, err := f.store.Requests.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMatched, req.Status)
}

func TestSync_MatchedDuplicatesAreNotRetried(t *testing.T) {
	f := newSyncFixture()
	f.mem.Put(pendingRequest(1, "100", jan(25), 10))

	f.source.On("FetchTransactions", mock.Anything, testAccount, mock.Anything, mock.Anything).
		Return([]domain.RawRecord{deposit("X", "100", jan(25)), withdrawal("W", "5", jan(25))}, nil).Twice()

	first, err := f.service(nil).Sync(context.Background(), SyncRequest{AccountRef: testAccount})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Matched)

	second, err := f.service(nil).Sync(context.Background(), SyncRequest{AccountRef: testAccount})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Ingest.Duplicates)
	assert.Empty(t, second.Ingest.ExistingUnmatchedIDs)
	assert.Empty(t, second.Outcomes)
}

func TestSync_SkipMatch(t *testing.T) {
	f := newSyncFixture()
	f.mem.Put(pendingRequest(1, "100", jan(25), 10))

	f.source.On("FetchTransactions", mock.Anything, testAccount, mock.Anything, mock.Anything).
		Return([]domain.RawRecord{deposit("X", "100", jan(25))}, nil).Once()

	report, err := f.service(nil).Sync(context.Background(), SyncRequest{AccountRef: testAccount, SkipMatch: true})
	require.NoError(t, err)
	assert.Len(t, report.Ingest.NewIDs, 1)
	assert.Zero(t, report.Matched)
}

func TestSync_LeaseHeld(t *testing.T) {
	f := newSyncFixture()

	release, err := f.leases.Acquire(context.Background(), "sync:club:1", time.Minute)
	require.NoError(t, err)
	defer release()

	_, err = f.service(nil).Sync(context.Background(), SyncRequest{AccountRef: testAccount})
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)
	f.source.AssertNotCalled(t, "FetchTransactions", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSync_AccountResolution(t *testing.T) {
	f := newSyncFixture()
	svc := f.service(nil)

	_, err := svc.Sync(context.Background(), SyncRequest{AccountRef: "NOPE"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Sync(context.Background(), SyncRequest{ClubID: otherClub, AccountRef: testAccount})
	assert.ErrorIs(t, err, domain.ErrClubMismatch)

	_, err = svc.SyncClub(context.Background(), otherClub, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSync_ExplicitWindow(t *testing.T) {
	f := newSyncFixture()
	from, to := jan(1), jan(15)

	f.source.On("FetchTransactions", mock.Anything, testAccount, at(from), at(to)).
		Return([]domain.RawRecord{}, nil).Once()
	report, err := f.service(nil).Sync(context.Background(), SyncRequest{AccountRef: testAccount, From: &from, To: &to})
	require.NoError(t, err)
	assert.True(t, report.From.Equal(from))
	assert.True(t, report.To.Equal(to))

	_, err = f.service(nil).Sync(context.Background(), SyncRequest{AccountRef: testAccount, From: &to, To: &from})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"club-recon/internal/domain"
	"club-recon/internal/events"
	"club-recon/internal/repository"
	"club-recon/internal/repository/memory"
)

const (
	testClub    int64 = 1
	otherClub   int64 = 2
	testAccount       = "ACC-001"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// jan returns 10:00 UTC on the given day of January 2024.
func jan(day int) time.Time {
	return time.Date(2024, time.January, day, 10, 0, 0, 0, time.UTC)
}

func deposit(bankTxID, amount string, at time.Time) domain.RawRecord {
	return domain.RawRecord{
		BankTxID:   bankTxID,
		OccurredAt: at,
		Direction:  domain.Deposit,
		Amount:     dec(amount),
		Narrative:  "TRANSFER " + bankTxID,
	}
}

func withdrawal(bankTxID, amount string, at time.Time) domain.RawRecord {
	r := deposit(bankTxID, amount, at)
	r.Direction = domain.Withdraw
	return r
}

func pendingRequest(id int64, amount string, expected time.Time, window int) domain.PaymentRequest {
	return domain.PaymentRequest{
		ID:              id,
		ClubID:          testClub,
		MemberID:        100 + id,
		MemberName:      "member",
		RequestType:     domain.MembershipFee,
		ExpectedAmount:  dec(amount),
		ExpectedDate:    domain.DateOf(expected),
		MatchWindowDays: window,
		Status:          domain.StatusPending,
	}
}

type fixture struct {
	mem      *memory.Store
	store    *repository.Store
	ingest   IngestService
	recon    ReconciliationService
	manual   ManualMatchService
	expiry   ExpiryService
	ledger   LedgerService
	requests PaymentRequestService
}

func newFixture() *fixture {
	mem := memory.NewStore()
	store := mem.Repositories()
	return &fixture{
		mem:      mem,
		store:    store,
		ingest:   NewIngestService(store.Transactions),
		recon:    NewReconciliationService(store, nil, nil, DefaultMaxRetries),
		manual:   NewManualMatchService(store, nil, DefaultMaxRetries),
		expiry:   NewExpiryService(store.Requests, nil),
		ledger:   NewLedgerService(store.Ledger),
		requests: NewPaymentRequestService(store.Requests),
	}
}

func (f *fixture) mustIngest(records ...domain.RawRecord) []int64 {
	ids, err := f.ingest.Ingest(context.Background(), testClub, testAccount, records)
	if err != nil {
		panic(err)
	}
	return ids
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, evs ...events.Event) error {
	args := m.Called(ctx, evs)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	return nil
}

// published flattens every event passed to Publish.
func (m *mockPublisher) published() []events.Event {
	var out []events.Event
	for _, c := range m.Calls {
		if c.Method != "Publish" {
			continue
		}
		out = append(out, c.Arguments.Get(1).([]events.Event)...)
	}
	return out
}

// flakyMatches fails the first failures binds with a version conflict.
type flakyMatches struct {
	repository.MatchRepository
	failures int
	calls    int
}

func (f *flakyMatches) BindTransaction(ctx context.Context, req *domain.PaymentRequest, tx *domain.BankTransaction) error {
	f.calls++
	if f.calls <= f.failures {
		return domain.ErrVersionConflict
	}
	return f.MatchRepository.BindTransaction(ctx, req, tx)
}

package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrRequestNotMatchable is returned when a payment request is in a state
	// that does not allow the requested transition.
	ErrRequestNotMatchable = errors.New("payment request is not matchable")

	// ErrTransactionAlreadyMatched is returned when a bank transaction is already
	// bound to a payment request.
	ErrTransactionAlreadyMatched = errors.New("transaction already matched")

	ErrTransactionNotDeposit = errors.New("only deposit transactions can settle a payment request")
	ErrClubMismatch          = errors.New("transaction and payment request belong to different clubs")

	// ErrVersionConflict is returned by the storage layer when a compare-and-set
	// lost against a concurrent writer. Services retry on it.
	ErrVersionConflict = errors.New("concurrent update conflict")

	// ErrConcurrentUpdate is surfaced to callers once internal retries on
	// ErrVersionConflict are exhausted.
	ErrConcurrentUpdate = errors.New("concurrent update retries exhausted")

	ErrSourceFetch     = errors.New("bank source fetch failed")
	ErrUnknownProvider = errors.New("unknown bank provider")
	ErrSyncInProgress  = errors.New("sync already in progress for club")

	ErrInvalidRecord  = errors.New("malformed transaction record")
	ErrInvalidRequest = errors.New("invalid payment request")
)

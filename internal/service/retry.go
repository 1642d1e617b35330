package service

import (
	"errors"
	"fmt"

	"club-recon/internal/domain"
	"club-recon/internal/metrics"
)

// DefaultMaxRetries bounds how often a lost compare-and-set is retried.
const DefaultMaxRetries = 3

// retryOnConflict runs attempt until it stops returning
// domain.ErrVersionConflict. Each attempt must re-read the rows it updates.
func retryOnConflict(maxRetries int, attempt func() error) error {
	var err error
	for i := 0; i <= maxRetries; i++ {
		err = attempt()
		if !errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
		metrics.MatchConflicts.Inc()
	}
	return fmt.Errorf("%w: %v", domain.ErrConcurrentUpdate, err)
}

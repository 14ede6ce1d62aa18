// Package services holds the application service that orchestrates account,
// session, and ledger operations over the storage layer. Handlers never talk
// to storage directly; they resolve the authenticated account id from the
// session and pass it into these methods explicitly.
package services

import (
	"time"

	"spendwise/internal/storage"
)

// Service orchestrates all user-facing operations.
type Service struct {
	repo       *storage.SQLiteRepository
	sessionTTL time.Duration

	// now is injectable so expense-date defaulting and session expiry are
	// under test control.
	now func() time.Time
}

func New(repo *storage.SQLiteRepository, sessionTTL time.Duration) *Service {
	return &Service{
		repo:       repo,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// WithClock replaces the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

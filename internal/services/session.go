package services

import (
	"context"
	"log/slog"

	"spendwise/internal/core"
)

// Authenticate resolves a session token to its account. Expired or unknown
// tokens return core.ErrSessionNotFound.
func (s *Service) Authenticate(ctx context.Context, token string) (core.Account, error) {
	if token == "" {
		return core.Account{}, core.ErrSessionNotFound
	}
	return s.repo.SessionAccount(ctx, token, s.now())
}

// Logout tears down the session. Idempotent: an unknown token succeeds.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSession(ctx, token)
}

// SweepExpiredSessions removes expired session rows. Called periodically by
// the background sweeper in cmd/spendwise.
func (s *Service) SweepExpiredSessions(ctx context.Context) error {
	swept, err := s.repo.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return err
	}
	if swept > 0 {
		slog.InfoContext(ctx, "Expired sessions swept", "count", swept)
	}
	return nil
}

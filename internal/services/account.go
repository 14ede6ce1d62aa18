package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"spendwise/internal/auth"
	"spendwise/internal/core"
)

// Register creates a new account. The password is bcrypt-hashed before it
// reaches storage; a taken username surfaces core.ErrDuplicateUsername with
// no partial effects.
func (s *Service) Register(ctx context.Context, username, password, confirm string) (core.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return core.Account{}, core.ErrInvalidCredentials
	}
	if password != confirm {
		return core.Account{}, core.ErrPasswordMismatch
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return core.Account{}, fmt.Errorf("register: %w", err)
	}

	acc, err := s.repo.CreateAccount(ctx, username, hash)
	if err != nil {
		return core.Account{}, err
	}

	slog.InfoContext(ctx, "Registration completed", "account_id", acc.ID, "username", acc.Username)
	return acc, nil
}

// Login verifies the credentials and establishes a new session. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (core.Session, error) {
	username = strings.TrimSpace(username)

	acc, err := s.repo.AccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return core.Session{}, core.ErrInvalidCredentials
		}
		return core.Session{}, err
	}

	if !auth.CheckPassword(password, acc.PasswordHash) {
		return core.Session{}, core.ErrInvalidCredentials
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return core.Session{}, fmt.Errorf("login: %w", err)
	}

	expiresAt := s.now().Add(s.sessionTTL)
	if err := s.repo.CreateSession(ctx, token, acc.ID, expiresAt); err != nil {
		return core.Session{}, err
	}

	slog.InfoContext(ctx, "Login succeeded", "account_id", acc.ID, "username", acc.Username)
	return core.Session{Token: token, AccountID: acc.ID, ExpiresAt: expiresAt}, nil
}

// ChangePassword rotates the credential hash after verifying the current
// password and the confirmation.
func (s *Service) ChangePassword(ctx context.Context, accountID int64, current, newPassword, confirm string) error {
	acc, err := s.repo.AccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(current, acc.PasswordHash) {
		return core.ErrInvalidCredentials
	}
	if newPassword != confirm {
		return core.ErrPasswordMismatch
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	if err := s.repo.SetPasswordHash(ctx, accountID, hash); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Password rotated", "account_id", accountID)
	return nil
}

// SetMonthlyIncome parses the submitted amount and overwrites the account's
// monthly income unconditionally.
func (s *Service) SetMonthlyIncome(ctx context.Context, accountID int64, amountText string) error {
	value, err := core.ParseAmount(amountText)
	if err != nil {
		return err
	}

	if err := s.repo.SetMonthlyIncome(ctx, accountID, value); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Monthly income updated", "account_id", accountID, "amount", value)
	return nil
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rubbank/rubbank-api/internal/domain"
	"github.com/rubbank/rubbank-api/internal/logging"
)

type attemptRepo interface {
	RecordFailedAttempt(ctx context.Context, id uuid.UUID, maxAttempts int) (int, domain.AccountStatus, error)
	ResetFailedAttempts(ctx context.Context, id uuid.UUID) error
}

// SecurityGate checks the transactional password in front of every
// transfer request. It runs before the ledger and outside the ledger's
// transaction: the attempt counter moves even when the transfer never
// happens.
type SecurityGate struct {
	accounts    attemptRepo
	maxAttempts int
}

func NewSecurityGate(accounts attemptRepo) *SecurityGate {
	return &SecurityGate{accounts: accounts, maxAttempts: domain.MaxFailedAttempts}
}

// VerifyTransactionalPassword authorizes one transfer attempt. A wrong
// password bumps the account's failed-attempt counter and blocks the
// account at the limit; a correct one resets the counter to zero.
func (g *SecurityGate) VerifyTransactionalPassword(ctx context.Context, account *domain.Account, password string) error {
	if account.Status != domain.AccountStatusActive {
		return fmt.Errorf("VerifyTransactionalPassword: %w", domain.ErrAccountNotActive)
	}

	err := bcrypt.CompareHashAndPassword([]byte(account.TransactionPasswordHash), []byte(password))
	if err == nil {
		if err := g.accounts.ResetFailedAttempts(ctx, account.ID); err != nil {
			return fmt.Errorf("VerifyTransactionalPassword: %w", err)
		}
		return nil
	}

	attempts, status, err := g.accounts.RecordFailedAttempt(ctx, account.ID, g.maxAttempts)
	if err != nil {
		return fmt.Errorf("VerifyTransactionalPassword: %w", err)
	}

	logging.FromContext(ctx).Warn("incorrect transactional password",
		"account_id", account.ID,
		"failed_attempts", attempts,
		"status", status,
	)

	if status == domain.AccountStatusBlocked {
		return fmt.Errorf("VerifyTransactionalPassword: %w", domain.ErrTooManyAttempts)
	}
	return fmt.Errorf("VerifyTransactionalPassword: %w", domain.ErrIncorrectPassword)
}

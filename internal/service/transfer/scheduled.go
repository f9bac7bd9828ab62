package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rubbank/rubbank-api/internal/domain"
	"github.com/rubbank/rubbank-api/internal/logging"
)

// schedule records a future-dated transfer. No balances move until the
// sweeper picks it up on its due day.
func (s *Service) schedule(ctx context.Context, source, dest *domain.Account, value decimal.Decimal, dayOfTransfer time.Time) (*domain.Transfer, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("schedule: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := s.now().UTC()
	t := &domain.Transfer{
		ID:             uuid.New(),
		AccountIDFrom:  source.ID,
		AccountIDTo:    dest.ID,
		Value:          value,
		Status:         domain.TransferStatusScheduled,
		TimeToTransfer: &dayOfTransfer,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.transfers.Create(ctx, tx, t); err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("schedule: commit: %w", err)
	}

	logging.FromContext(ctx).Info("transfer scheduled",
		"transfer_id", t.ID,
		"from_account", source.ID,
		"to_account", dest.ID,
		"value", value,
		"time_to_transfer", dayOfTransfer,
	)

	return t, nil
}

// ListDue returns the stable list of transfers the sweeper must attempt,
// oldest schedule first.
func (s *Service) ListDue(ctx context.Context) ([]domain.Transfer, error) {
	due, err := s.transfers.ListDue(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("ListDue: %w", err)
	}
	return due, nil
}

// ExecuteScheduled settles one due transfer. The balance is re-checked
// inside a fresh transaction: sufficient funds move the money and mark the
// row DONE, insufficient funds mark it CANCELED without touching balances.
// The existing row transitions in place either way.
func (s *Service) ExecuteScheduled(ctx context.Context, t domain.Transfer) (domain.TransferStatus, error) {
	if t.Status != domain.TransferStatusScheduled {
		return t.Status, fmt.Errorf("ExecuteScheduled: transfer %s is %s, not SCHEDULED", t.ID, t.Status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("ExecuteScheduled: begin tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := s.lockAccountsInOrder(ctx, tx, t.AccountIDFrom, t.AccountIDTo)
	if err != nil {
		return "", fmt.Errorf("ExecuteScheduled: %w", err)
	}
	from, to := locked[t.AccountIDFrom], locked[t.AccountIDTo]

	newFromBalance := from.Balance.Sub(t.Value)

	status := domain.TransferStatusDone
	if newFromBalance.IsNegative() {
		status = domain.TransferStatusCanceled
	} else {
		if err := s.accounts.UpdateBalance(ctx, tx, from.ID, newFromBalance, from.Version+1); err != nil {
			return "", fmt.Errorf("ExecuteScheduled: debit: %w", err)
		}
		if err := s.accounts.UpdateBalance(ctx, tx, to.ID, to.Balance.Add(t.Value), to.Version+1); err != nil {
			return "", fmt.Errorf("ExecuteScheduled: credit: %w", err)
		}
	}

	if err := s.transfers.UpdateStatus(ctx, tx, t.ID, status); err != nil {
		return "", fmt.Errorf("ExecuteScheduled: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("ExecuteScheduled: commit: %w", err)
	}

	return status, nil
}

package transfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rubbank/rubbank-api/internal/domain"
	"github.com/rubbank/rubbank-api/internal/logging"
)

type CreateRequest struct {
	FromAccountID   uuid.UUID
	ToAccountNumber int64
	Value           decimal.Decimal
	TimeToTransfer  *time.Time
}

// Create routes a transfer request by its requested date: past dates are
// rejected, today (or no date) executes immediately, future dates are
// recorded for the sweeper.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Transfer, error) {
	source, dest, err := s.resolveAccounts(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	today := s.startOfDay(s.now())
	dayOfTransfer := today
	if req.TimeToTransfer != nil {
		dayOfTransfer = s.startOfDay(*req.TimeToTransfer)
	}

	switch {
	case dayOfTransfer.After(today):
		t, err := s.schedule(ctx, source, dest, req.Value, dayOfTransfer)
		if err != nil {
			return nil, fmt.Errorf("Create: %w", err)
		}
		return t, nil
	case dayOfTransfer.Before(today):
		return nil, fmt.Errorf("Create: %w", domain.ErrScheduleDateInvalid)
	default:
		t, err := s.executeImmediate(ctx, source, dest, req.Value)
		if err != nil {
			return nil, fmt.Errorf("Create: %w", err)
		}
		return t, nil
	}
}

func (s *Service) resolveAccounts(ctx context.Context, req CreateRequest) (*domain.Account, *domain.Account, error) {
	source, err := s.accounts.GetByID(ctx, req.FromAccountID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolveAccounts: source: %w", err)
	}

	if source.AccountNumber == req.ToAccountNumber {
		return nil, nil, fmt.Errorf("resolveAccounts: %w", domain.ErrLoopTransfer)
	}

	dest, err := s.accounts.GetByNumber(ctx, req.ToAccountNumber)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("resolveAccounts: %w", domain.ErrDestinationNotFound)
		}
		return nil, nil, fmt.Errorf("resolveAccounts: %w", err)
	}
	if dest.Status != domain.AccountStatusActive {
		return nil, nil, fmt.Errorf("resolveAccounts: destination: %w", domain.ErrAccountNotActive)
	}

	return source, dest, nil
}

func (s *Service) executeImmediate(ctx context.Context, source, dest *domain.Account, value decimal.Decimal) (*domain.Transfer, error) {
	log := logging.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("executeImmediate: begin tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := s.lockAccountsInOrder(ctx, tx, source.ID, dest.ID)
	if err != nil {
		return nil, fmt.Errorf("executeImmediate: %w", err)
	}
	from, to := locked[source.ID], locked[dest.ID]

	if to.Status != domain.AccountStatusActive {
		return nil, fmt.Errorf("executeImmediate: destination: %w", domain.ErrAccountNotActive)
	}

	newFromBalance := from.Balance.Sub(value)
	if newFromBalance.IsNegative() {
		// Abort the unit, then persist a CANCELED artifact documenting
		// the rejected attempt. An artifact insert failure outranks the
		// funds error so the caller knows the record is missing.
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			return nil, fmt.Errorf("executeImmediate: rollback: %w", err)
		}
		if err := s.recordCanceledAttempt(ctx, from.ID, to.ID, value); err != nil {
			return nil, fmt.Errorf("executeImmediate: %w", err)
		}
		return nil, fmt.Errorf("executeImmediate: %w", domain.ErrInsufficientFunds)
	}

	now := s.now().UTC()
	t := &domain.Transfer{
		ID:            uuid.New(),
		AccountIDFrom: from.ID,
		AccountIDTo:   to.ID,
		Value:         value,
		Status:        domain.TransferStatusDone,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.accounts.UpdateBalance(ctx, tx, from.ID, newFromBalance, from.Version+1); err != nil {
		return nil, fmt.Errorf("executeImmediate: debit: %w", err)
	}
	if err := s.accounts.UpdateBalance(ctx, tx, to.ID, to.Balance.Add(value), to.Version+1); err != nil {
		return nil, fmt.Errorf("executeImmediate: credit: %w", err)
	}
	if err := s.transfers.Create(ctx, tx, t); err != nil {
		return nil, fmt.Errorf("executeImmediate: create transfer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("executeImmediate: commit: %w", err)
	}

	log.Info("transfer completed",
		"transfer_id", t.ID,
		"from_account", from.ID,
		"to_account", to.ID,
		"value", value,
	)

	return t, nil
}

func (s *Service) recordCanceledAttempt(ctx context.Context, fromID, toID uuid.UUID, value decimal.Decimal) error {
	now := s.now().UTC()
	canceled := &domain.Transfer{
		ID:            uuid.New(),
		AccountIDFrom: fromID,
		AccountIDTo:   toID,
		Value:         value,
		Status:        domain.TransferStatusCanceled,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.transfers.CreateCanceled(ctx, canceled); err != nil {
		return fmt.Errorf("recordCanceledAttempt: %w", err)
	}
	return nil
}

// lockAccountsInOrder takes FOR UPDATE locks in a deterministic order so
// two transfers touching the same pair of accounts cannot deadlock.
func (s *Service) lockAccountsInOrder(ctx context.Context, tx *sql.Tx, ids ...uuid.UUID) (map[uuid.UUID]*domain.Account, error) {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	result := make(map[uuid.UUID]*domain.Account, len(ids))
	for _, id := range sorted {
		acct, err := s.accounts.GetForUpdate(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("lockAccountsInOrder: %w", err)
		}
		result[id] = acct
	}
	return result, nil
}

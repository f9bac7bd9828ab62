package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rubbank/rubbank-api/internal/domain"
	"github.com/rubbank/rubbank-api/internal/repository"
)

type ListQuery struct {
	AccountID uuid.UUID
	Direction domain.TransferDirection
	Status    domain.TransferStatus
	Start     *time.Time
	End       *time.Time
	Page      int
}

type ListItem struct {
	ID        uuid.UUID
	Value     decimal.Decimal
	Direction domain.TransferDirection
	Time      time.Time
	Status    domain.TransferStatus
}

// List pages through an account's history, annotating each row with its
// direction relative to the queried account.
func (s *Service) List(ctx context.Context, q ListQuery) ([]ListItem, error) {
	if q.Direction == "" {
		q.Direction = domain.DirectionBoth
	}
	if q.Status == "" {
		q.Status = domain.TransferStatusDone
	}

	transfers, err := s.transfers.List(ctx, repository.ListFilter{
		AccountID: q.AccountID,
		Direction: q.Direction,
		Status:    q.Status,
		Start:     q.Start,
		End:       q.End,
		Page:      q.Page,
	})
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}

	items := make([]ListItem, 0, len(transfers))
	for _, t := range transfers {
		direction := domain.DirectionIn
		if t.AccountIDFrom == q.AccountID {
			direction = domain.DirectionOut
		}

		when := t.UpdatedAt
		if t.Status == domain.TransferStatusScheduled && t.TimeToTransfer != nil {
			when = *t.TimeToTransfer
		}

		items = append(items, ListItem{
			ID:        t.ID,
			Value:     t.Value,
			Direction: direction,
			Time:      when,
			Status:    t.Status,
		})
	}
	return items, nil
}

type Detail struct {
	*domain.TransferDetail
	Direction      domain.TransferDirection
	TimeOfTransfer time.Time
}

// GetDetail loads the full view of one transfer for a user that must be
// its sender or receiver.
func (s *Service) GetDetail(ctx context.Context, transferID, userID uuid.UUID) (*Detail, error) {
	d, err := s.transfers.GetDetail(ctx, transferID)
	if err != nil {
		return nil, fmt.Errorf("GetDetail: %w", err)
	}

	isSender := d.From.OwnerID == userID
	isReceiver := d.To.OwnerID == userID
	if !isSender && !isReceiver {
		return nil, fmt.Errorf("GetDetail: %w", domain.ErrForbiddenAccess)
	}

	direction := domain.DirectionOut
	if isReceiver {
		direction = domain.DirectionIn
	}

	return &Detail{
		TransferDetail: d,
		Direction:      direction,
		TimeOfTransfer: s.displayTime(&d.Transfer),
	}, nil
}

// displayTime is the timestamp shown for a transfer. A canceled scheduled
// transfer reads as if it had been retried the following day.
func (s *Service) displayTime(t *domain.Transfer) time.Time {
	switch t.Status {
	case domain.TransferStatusScheduled:
		if t.TimeToTransfer != nil {
			return s.startOfDay(*t.TimeToTransfer)
		}
		return s.startOfDay(t.UpdatedAt)
	case domain.TransferStatusCanceled:
		return s.startOfDay(t.UpdatedAt).AddDate(0, 0, 1)
	default:
		return t.UpdatedAt
	}
}

// Balance returns the current balance of an account.
func (s *Service) Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("Balance: %w", err)
	}
	return account.Balance, nil
}

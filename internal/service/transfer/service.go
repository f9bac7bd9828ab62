package transfer

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rubbank/rubbank-api/internal/domain"
	"github.com/rubbank/rubbank-api/internal/repository"
)

type accountRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByNumber(ctx context.Context, number int64) (*domain.Account, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance decimal.Decimal, newVersion int64) error
}

type transferRepo interface {
	Create(ctx context.Context, tx *sql.Tx, t *domain.Transfer) error
	CreateCanceled(ctx context.Context, t *domain.Transfer) error
	GetDetail(ctx context.Context, id uuid.UUID) (*domain.TransferDetail, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.TransferStatus) error
	ListDue(ctx context.Context, now time.Time) ([]domain.Transfer, error)
	List(ctx context.Context, f repository.ListFilter) ([]domain.Transfer, error)
}

// Service is the transfer ledger: the only writer of account balances.
type Service struct {
	db        *sql.DB
	accounts  accountRepo
	transfers transferRepo
	loc       *time.Location
	now       func() time.Time
}

func NewService(db *sql.DB, accounts accountRepo, transfers transferRepo, loc *time.Location) *Service {
	return &Service{
		db:        db,
		accounts:  accounts,
		transfers: transfers,
		loc:       loc,
		now:       time.Now,
	}
}

// startOfDay normalizes t to midnight in the reference timezone. All
// day-boundary decisions go through here so "today" means the same thing
// for scheduling, sweeping and display.
func (s *Service) startOfDay(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

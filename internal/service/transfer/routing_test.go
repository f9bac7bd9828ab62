package transfer

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubbank/rubbank-api/internal/domain"
	"github.com/rubbank/rubbank-api/internal/repository"
)

type stubAccountRepo struct {
	byID     map[uuid.UUID]*domain.Account
	byNumber map[int64]*domain.Account
}

func (s *stubAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	if a, ok := s.byID[id]; ok {
		return a, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubAccountRepo) GetByNumber(_ context.Context, number int64) (*domain.Account, error) {
	if a, ok := s.byNumber[number]; ok {
		return a, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubAccountRepo) GetForUpdate(context.Context, *sql.Tx, uuid.UUID) (*domain.Account, error) {
	panic("not expected in routing tests")
}

func (s *stubAccountRepo) UpdateBalance(context.Context, *sql.Tx, uuid.UUID, decimal.Decimal, int64) error {
	panic("not expected in routing tests")
}

type stubTransferRepo struct {
	created []*domain.Transfer
}

func (s *stubTransferRepo) Create(_ context.Context, _ *sql.Tx, t *domain.Transfer) error {
	s.created = append(s.created, t)
	return nil
}
func (s *stubTransferRepo) CreateCanceled(context.Context, *domain.Transfer) error { return nil }
func (s *stubTransferRepo) GetDetail(context.Context, uuid.UUID) (*domain.TransferDetail, error) {
	return nil, domain.ErrNotFound
}
func (s *stubTransferRepo) UpdateStatus(context.Context, *sql.Tx, uuid.UUID, domain.TransferStatus) error {
	return nil
}
func (s *stubTransferRepo) ListDue(context.Context, time.Time) ([]domain.Transfer, error) {
	return nil, nil
}
func (s *stubTransferRepo) List(context.Context, repository.ListFilter) ([]domain.Transfer, error) {
	return nil, nil
}

func newRoutingService(t *testing.T, accounts *stubAccountRepo, now time.Time) *Service {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	svc := NewService(nil, accounts, &stubTransferRepo{}, loc)
	svc.now = func() time.Time { return now }
	return svc
}

func fixedAccounts() (*stubAccountRepo, *domain.Account, *domain.Account) {
	source := &domain.Account{
		ID:            uuid.New(),
		AccountNumber: 11111111,
		Balance:       decimal.NewFromInt(100),
		Status:        domain.AccountStatusActive,
	}
	dest := &domain.Account{
		ID:            uuid.New(),
		AccountNumber: 22222222,
		Balance:       decimal.NewFromInt(50),
		Status:        domain.AccountStatusActive,
	}
	repo := &stubAccountRepo{
		byID:     map[uuid.UUID]*domain.Account{source.ID: source, dest.ID: dest},
		byNumber: map[int64]*domain.Account{source.AccountNumber: source, dest.AccountNumber: dest},
	}
	return repo, source, dest
}

func TestCreate_PastDateRejected(t *testing.T) {
	repo, source, dest := fixedAccounts()
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	svc := newRoutingService(t, repo, now)

	yesterday := now.AddDate(0, 0, -1)
	_, err := svc.Create(context.Background(), CreateRequest{
		FromAccountID:   source.ID,
		ToAccountNumber: dest.AccountNumber,
		Value:           decimal.NewFromInt(10),
		TimeToTransfer:  &yesterday,
	})
	assert.ErrorIs(t, err, domain.ErrScheduleDateInvalid)
}

func TestCreate_TodayRoutesToImmediateExecution(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		requested time.Time
	}{
		{
			name:      "afternoon date on the same day",
			now:       time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
			requested: time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC),
		},
		{
			// 01:00 UTC on March 11 is still the evening of March 10 in
			// America/Sao_Paulo, so a request dated March 10 in UTC lands
			// on the current reference-zone day even though the UTC dates
			// disagree.
			name:      "dates straddle the UTC midnight",
			now:       time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC),
			requested: time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, source, dest := fixedAccounts()
			transfers := &stubTransferRepo{}
			loc, err := time.LoadLocation("America/Sao_Paulo")
			require.NoError(t, err)

			// A lazy handle to nowhere: the immediate path is the only
			// branch that opens a transaction, so its connection failure
			// marks the branch taken.
			db, err := sql.Open("postgres", "postgres://127.0.0.1:1/none?sslmode=disable")
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })

			svc := NewService(db, repo, transfers, loc)
			svc.now = func() time.Time { return tt.now }

			_, err = svc.Create(context.Background(), CreateRequest{
				FromAccountID:   source.ID,
				ToAccountNumber: dest.AccountNumber,
				Value:           decimal.NewFromInt(10),
				TimeToTransfer:  &tt.requested,
			})
			require.Error(t, err)
			assert.NotErrorIs(t, err, domain.ErrScheduleDateInvalid)
			assert.Empty(t, transfers.created)
		})
	}
}

func TestStartOfDay_TimezoneBoundary(t *testing.T) {
	repo, _, _ := fixedAccounts()
	svc := newRoutingService(t, repo, time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))

	// 01:00 UTC on March 11 is still the evening of March 10 in
	// America/Sao_Paulo. Day boundaries follow the reference timezone,
	// not UTC.
	got := svc.startOfDay(time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC))
	want := time.Date(2026, 3, 10, 0, 0, 0, 0, svc.loc)
	assert.True(t, got.Equal(want), "got %v, want %v", got, want)
}

func TestCreate_LoopTransferRejected(t *testing.T) {
	repo, source, _ := fixedAccounts()
	svc := newRoutingService(t, repo, time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))

	_, err := svc.Create(context.Background(), CreateRequest{
		FromAccountID:   source.ID,
		ToAccountNumber: source.AccountNumber,
		Value:           decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, domain.ErrLoopTransfer)
}

func TestCreate_DestinationNotFound(t *testing.T) {
	repo, source, _ := fixedAccounts()
	svc := newRoutingService(t, repo, time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))

	_, err := svc.Create(context.Background(), CreateRequest{
		FromAccountID:   source.ID,
		ToAccountNumber: 99999999,
		Value:           decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, domain.ErrDestinationNotFound)
}

func TestCreate_DestinationNotActive(t *testing.T) {
	repo, source, dest := fixedAccounts()
	dest.Status = domain.AccountStatusBlocked
	svc := newRoutingService(t, repo, time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))

	_, err := svc.Create(context.Background(), CreateRequest{
		FromAccountID:   source.ID,
		ToAccountNumber: dest.AccountNumber,
		Value:           decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, domain.ErrAccountNotActive)
}

func TestDisplayTime(t *testing.T) {
	repo, _, _ := fixedAccounts()
	svc := newRoutingService(t, repo, time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))
	loc := svc.loc

	updated := time.Date(2026, 3, 9, 18, 30, 0, 0, time.UTC)
	due := time.Date(2026, 3, 20, 0, 0, 0, 0, loc)

	t.Run("done shows the settlement time", func(t *testing.T) {
		got := svc.displayTime(&domain.Transfer{
			Status:    domain.TransferStatusDone,
			UpdatedAt: updated,
		})
		assert.True(t, got.Equal(updated))
	})

	t.Run("scheduled shows the due day", func(t *testing.T) {
		got := svc.displayTime(&domain.Transfer{
			Status:         domain.TransferStatusScheduled,
			TimeToTransfer: &due,
			UpdatedAt:      updated,
		})
		assert.True(t, got.Equal(time.Date(2026, 3, 20, 0, 0, 0, 0, loc)))
	})

	t.Run("canceled shows the day after cancellation", func(t *testing.T) {
		got := svc.displayTime(&domain.Transfer{
			Status:    domain.TransferStatusCanceled,
			UpdatedAt: updated,
		})
		assert.True(t, got.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, loc)))
	})
}

package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubbank/rubbank-api/internal/domain"
)

type fakeLedger struct {
	due      []domain.Transfer
	results  map[uuid.UUID]domain.TransferStatus
	failIDs  map[uuid.UUID]bool
	executed []uuid.UUID
}

func (f *fakeLedger) ListDue(context.Context) ([]domain.Transfer, error) {
	return f.due, nil
}

func (f *fakeLedger) ExecuteScheduled(_ context.Context, t domain.Transfer) (domain.TransferStatus, error) {
	f.executed = append(f.executed, t.ID)
	if f.failIDs[t.ID] {
		return "", errors.New("settlement failed")
	}
	return f.results[t.ID], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func dueTransfer() domain.Transfer {
	return domain.Transfer{
		ID:     uuid.New(),
		Value:  decimal.NewFromInt(10),
		Status: domain.TransferStatusScheduled,
	}
}

func TestRunSweep_ExecutesAllDue(t *testing.T) {
	a, b := dueTransfer(), dueTransfer()
	ledger := &fakeLedger{
		due: []domain.Transfer{a, b},
		results: map[uuid.UUID]domain.TransferStatus{
			a.ID: domain.TransferStatusDone,
			b.ID: domain.TransferStatusCanceled,
		},
	}

	s := New(ledger, testLogger(), "@daily")
	s.RunSweep()

	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, ledger.executed)
}

func TestRunSweep_ContinuesPastFailures(t *testing.T) {
	a, b, c := dueTransfer(), dueTransfer(), dueTransfer()
	ledger := &fakeLedger{
		due:     []domain.Transfer{a, b, c},
		failIDs: map[uuid.UUID]bool{b.ID: true},
		results: map[uuid.UUID]domain.TransferStatus{
			a.ID: domain.TransferStatusDone,
			c.ID: domain.TransferStatusDone,
		},
	}

	s := New(ledger, testLogger(), "@daily")
	s.RunSweep()

	// One bad transfer must not stop the rest of the sweep.
	assert.Equal(t, []uuid.UUID{a.ID, b.ID, c.ID}, ledger.executed)
}

func TestStart_RejectsInvalidSchedule(t *testing.T) {
	s := New(&fakeLedger{}, testLogger(), "not a cron expression")
	err := s.Start()
	require.Error(t, err)
}

func TestStart_AcceptsStandardSchedule(t *testing.T) {
	s := New(&fakeLedger{}, testLogger(), "0 6 * * *")
	require.NoError(t, s.Start())
	<-s.Stop().Done()
}

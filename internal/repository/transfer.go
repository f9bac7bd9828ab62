package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rubbank/rubbank-api/internal/domain"
)

// PageSize is the fixed page size of transfer history queries.
const PageSize = 10

const transferColumns = `id, account_id_from, account_id_to, value, status,
	time_to_transfer, created_at, updated_at`

type TransferRepository struct {
	db *sql.DB
}

func NewTransferRepository(db *sql.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) Create(ctx context.Context, tx *sql.Tx, t *domain.Transfer) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transfers (
			id, account_id_from, account_id_to, value, status,
			time_to_transfer, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.AccountIDFrom, t.AccountIDTo, t.Value, t.Status,
		t.TimeToTransfer, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// CreateCanceled records a rejected attempt outside any transaction. The
// aborted transfer unit has already rolled back when this runs.
func (r *TransferRepository) CreateCanceled(ctx context.Context, t *domain.Transfer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transfers (
			id, account_id_from, account_id_to, value, status,
			time_to_transfer, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.AccountIDFrom, t.AccountIDTo, t.Value, t.Status,
		t.TimeToTransfer, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("CreateCanceled: %w", err)
	}
	return nil
}

func (r *TransferRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id,
	)
	t, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return t, nil
}

// GetDetail loads a transfer together with both counterparties.
func (r *TransferRepository) GetDetail(ctx context.Context, id uuid.UUID) (*domain.TransferDetail, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT t.id, t.account_id_from, t.account_id_to, t.value, t.status,
			t.time_to_transfer, t.created_at, t.updated_at,
			su.id, src.account_number, src.agency, su.name, su.email, su.phone,
			du.id, dst.account_number, dst.agency, du.name, du.email, du.phone
		FROM transfers t
		JOIN accounts src ON src.id = t.account_id_from
		JOIN users su ON su.id = src.owner_id
		JOIN accounts dst ON dst.id = t.account_id_to
		JOIN users du ON du.id = dst.owner_id
		WHERE t.id = $1`, id,
	)

	var d domain.TransferDetail
	err := row.Scan(
		&d.ID, &d.AccountIDFrom, &d.AccountIDTo, &d.Value, &d.Status,
		&d.TimeToTransfer, &d.CreatedAt, &d.UpdatedAt,
		&d.From.OwnerID, &d.From.AccountNumber, &d.From.Agency, &d.From.Name, &d.From.Email, &d.From.Phone,
		&d.To.OwnerID, &d.To.AccountNumber, &d.To.Agency, &d.To.Name, &d.To.Email, &d.To.Phone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetDetail: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetDetail: %w", err)
	}
	return &d, nil
}

// UpdateStatus transitions a SCHEDULED transfer to its terminal status.
// Transfers only ever move forward, so a row that is no longer SCHEDULED
// reports ErrTransferSettled instead of being overwritten.
func (r *TransferRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.TransferStatus) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE transfers SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3`,
		status, id, domain.TransferStatusScheduled,
	)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateStatus: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateStatus: %w", domain.ErrTransferSettled)
	}
	return nil
}

// ListDue returns every SCHEDULED transfer whose date has arrived, oldest
// schedule first so same-day transfers execute in creation order.
func (r *TransferRepository) ListDue(ctx context.Context, now time.Time) ([]domain.Transfer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transferColumns+` FROM transfers
		WHERE status = $1 AND time_to_transfer <= $2
		ORDER BY time_to_transfer, created_at`,
		domain.TransferStatusScheduled, now,
	)
	if err != nil {
		return nil, fmt.Errorf("ListDue: %w", err)
	}
	defer rows.Close()

	var due []domain.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("ListDue: scan: %w", err)
		}
		due = append(due, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListDue: rows: %w", err)
	}
	return due, nil
}

type ListFilter struct {
	AccountID uuid.UUID
	Direction domain.TransferDirection
	Status    domain.TransferStatus
	Start     *time.Time
	End       *time.Time
	Page      int
}

// List pages through an account's history. DONE transfers order by
// completion time, SCHEDULED ones by their scheduled date.
func (r *TransferRepository) List(ctx context.Context, f ListFilter) ([]domain.Transfer, error) {
	timeCol := "updated_at"
	if f.Status == domain.TransferStatusScheduled {
		timeCol = "time_to_transfer"
	}

	query := `SELECT ` + transferColumns + ` FROM transfers WHERE status = $1`
	args := []any{f.Status}

	switch f.Direction {
	case domain.DirectionOut:
		args = append(args, f.AccountID)
		query += fmt.Sprintf(" AND account_id_from = $%d", len(args))
	case domain.DirectionIn:
		args = append(args, f.AccountID)
		query += fmt.Sprintf(" AND account_id_to = $%d", len(args))
	default:
		args = append(args, f.AccountID)
		query += fmt.Sprintf(" AND (account_id_from = $%d OR account_id_to = $%d)", len(args), len(args))
	}

	if f.Start != nil {
		args = append(args, *f.Start)
		query += fmt.Sprintf(" AND %s >= $%d", timeCol, len(args))
	}
	if f.End != nil {
		args = append(args, *f.End)
		query += fmt.Sprintf(" AND %s <= $%d", timeCol, len(args))
	}

	args = append(args, PageSize, f.Page*PageSize)
	query += fmt.Sprintf(" ORDER BY %s DESC LIMIT $%d OFFSET $%d", timeCol, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		transfers = append(transfers, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return transfers, nil
}

func scanTransfer(s scanner) (*domain.Transfer, error) {
	var t domain.Transfer
	err := s.Scan(
		&t.ID, &t.AccountIDFrom, &t.AccountIDTo, &t.Value, &t.Status,
		&t.TimeToTransfer, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

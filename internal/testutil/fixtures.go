package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/rubbank/rubbank-api/internal/domain"
)

// TransactionPassword is the transactional password every seeded account
// accepts.
const TransactionPassword = "4242"

func SeedUser(t *testing.T, db *sql.DB, name, email string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Phone:        "+5511999990000",
		PasswordHash: string(hash),
		Verified:     true,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO users (id, name, email, phone, password_hash, verified, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, u.Verified, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func SeedAccount(t *testing.T, db *sql.DB, ownerID uuid.UUID, number int64, balance decimal.Decimal) *domain.Account {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TransactionPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash transaction password: %v", err)
	}

	now := time.Now().UTC()
	a := &domain.Account{
		ID:                      uuid.New(),
		OwnerID:                 ownerID,
		AccountNumber:           number,
		Agency:                  1,
		Balance:                 balance,
		Version:                 1,
		Status:                  domain.AccountStatusActive,
		TransactionPasswordHash: string(hash),
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	_, err = db.Exec(
		`INSERT INTO accounts (
			id, owner_id, account_number, agency, balance, version,
			status, failed_attempts, transaction_password_hash, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.OwnerID, a.AccountNumber, a.Agency, a.Balance, a.Version,
		a.Status, a.FailedAttempts, a.TransactionPasswordHash, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed account %d: %v", number, err)
	}
	return a
}

func GetAccountBalance(t *testing.T, db *sql.DB, accountID uuid.UUID) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(`SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		t.Fatalf("get account balance %s: %v", accountID, err)
	}
	return balance
}

func GetAccountStatus(t *testing.T, db *sql.DB, accountID uuid.UUID) (domain.AccountStatus, int) {
	t.Helper()

	var status domain.AccountStatus
	var attempts int
	err := db.QueryRow(
		`SELECT status, failed_attempts FROM accounts WHERE id = $1`, accountID,
	).Scan(&status, &attempts)
	if err != nil {
		t.Fatalf("get account status %s: %v", accountID, err)
	}
	return status, attempts
}

func GetTransferStatus(t *testing.T, db *sql.DB, transferID uuid.UUID) domain.TransferStatus {
	t.Helper()

	var status domain.TransferStatus
	err := db.QueryRow(`SELECT status FROM transfers WHERE id = $1`, transferID).Scan(&status)
	if err != nil {
		t.Fatalf("get transfer status %s: %v", transferID, err)
	}
	return status
}

func CountTransfers(t *testing.T, db *sql.DB, accountID uuid.UUID, status domain.TransferStatus) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM transfers
		 WHERE (account_id_from = $1 OR account_id_to = $1) AND status = $2`,
		accountID, status,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count transfers for %s: %v", accountID, err)
	}
	return count
}

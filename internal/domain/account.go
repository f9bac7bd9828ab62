package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusBlocked  AccountStatus = "BLOCKED"
	AccountStatusInactive AccountStatus = "INACTIVE"
)

// MaxFailedAttempts is the number of consecutive wrong transactional
// password entries that blocks an account.
const MaxFailedAttempts = 3

type Account struct {
	ID                      uuid.UUID
	OwnerID                 uuid.UUID
	AccountNumber           int64
	Agency                  int
	Balance                 decimal.Decimal
	Version                 int64
	Status                  AccountStatus
	FailedAttempts          int
	TransactionPasswordHash string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

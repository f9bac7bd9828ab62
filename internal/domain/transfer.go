package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransferStatus string

const (
	TransferStatusDone      TransferStatus = "DONE"
	TransferStatusScheduled TransferStatus = "SCHEDULED"
	TransferStatusCanceled  TransferStatus = "CANCELED"
)

type TransferDirection string

const (
	DirectionIn   TransferDirection = "IN"
	DirectionOut  TransferDirection = "OUT"
	DirectionBoth TransferDirection = "BOTH"
)

type Transfer struct {
	ID             uuid.UUID
	AccountIDFrom  uuid.UUID
	AccountIDTo    uuid.UUID
	Value          decimal.Decimal
	Status         TransferStatus
	TimeToTransfer *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TransferParty is one side of a transfer as shown in the detail view.
type TransferParty struct {
	OwnerID       uuid.UUID
	AccountNumber int64
	Agency        int
	Name          string
	Email         string
	Phone         string
}

// TransferDetail is a Transfer joined with both counterparties.
type TransferDetail struct {
	Transfer
	From TransferParty
	To   TransferParty
}

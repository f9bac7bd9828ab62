package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/rubbank/rubbank-api/internal/auth"
	"github.com/rubbank/rubbank-api/internal/domain"
)

type accountGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
}

// ownedAccountFromPath resolves {accountId} and verifies it belongs to the
// authenticated user. Foreign accounts read as not found so account ids
// are not probeable.
func ownedAccountFromPath(r *http.Request, accounts accountGetter) (*domain.Account, *AppError) {
	authUserID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return nil, ErrMissingToken
	}

	accountID, err := uuid.Parse(r.PathValue("accountId"))
	if err != nil {
		return nil, ErrResourceNotFound
	}

	account, err := accounts.GetByID(r.Context(), accountID)
	if err != nil {
		return nil, ErrResourceNotFound
	}

	if account.OwnerID != authUserID {
		return nil, ErrResourceNotFound
	}

	return account, nil
}

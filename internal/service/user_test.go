package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rubbank/rubbank-api/internal/domain"
	"github.com/rubbank/rubbank-api/internal/mail"
	"github.com/rubbank/rubbank-api/internal/repository"
	"github.com/rubbank/rubbank-api/internal/service"
	"github.com/rubbank/rubbank-api/internal/testutil"
)

func TestOnboard_CreatesUserAndAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	users := repository.NewUserRepository(db)
	accounts := repository.NewAccountRepository(db)
	svc := service.NewUserService(db, users, accounts, mail.NopSender{})
	ctx := context.Background()

	user, account, err := svc.Onboard(ctx, service.OnboardRequest{
		Name:                "Alice",
		Email:               "alice@example.com",
		Phone:               "+5511999990000",
		Password:            "password123",
		TransactionPassword: "4242",
	})
	require.NoError(t, err)

	assert.Equal(t, user.ID, account.OwnerID)
	assert.Equal(t, 1, account.Agency)
	assert.Equal(t, domain.AccountStatusActive, account.Status)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(100)))
	assert.GreaterOrEqual(t, account.AccountNumber, int64(10_000_000))
	assert.Less(t, account.AccountNumber, int64(100_000_000))

	// Hashes, never plaintext.
	stored, err := users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))

	persisted, err := accounts.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(persisted.TransactionPasswordHash), []byte("4242")))
}

func TestOnboard_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	users := repository.NewUserRepository(db)
	accounts := repository.NewAccountRepository(db)
	svc := service.NewUserService(db, users, accounts, mail.NopSender{})
	ctx := context.Background()

	req := service.OnboardRequest{
		Name:                "Alice",
		Email:               "alice@example.com",
		Password:            "password123",
		TransactionPassword: "4242",
	}
	_, _, err := svc.Onboard(ctx, req)
	require.NoError(t, err)

	_, _, err = svc.Onboard(ctx, req)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestChangePassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	users := repository.NewUserRepository(db)
	accounts := repository.NewAccountRepository(db)
	svc := service.NewUserService(db, users, accounts, mail.NopSender{})
	ctx := context.Background()

	user, _, err := svc.Onboard(ctx, service.OnboardRequest{
		Name:                "Alice",
		Email:               "alice@example.com",
		Password:            "password123",
		TransactionPassword: "4242",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "wrong-current", "newpassword")
	assert.ErrorIs(t, err, domain.ErrIncorrectPassword)

	err = svc.ChangePassword(ctx, user.ID, "password123", "newpassword")
	require.NoError(t, err)

	updated, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("newpassword")))
}

func TestVerifyEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	users := repository.NewUserRepository(db)
	accounts := repository.NewAccountRepository(db)
	svc := service.NewUserService(db, users, accounts, mail.NopSender{})
	ctx := context.Background()

	user, _, err := svc.Onboard(ctx, service.OnboardRequest{
		Name:                "Alice",
		Email:               "alice@example.com",
		Password:            "password123",
		TransactionPassword: "4242",
	})
	require.NoError(t, err)
	assert.False(t, user.Verified)

	require.NoError(t, svc.VerifyEmail(ctx, user.ID))

	updated, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, updated.Verified)
}

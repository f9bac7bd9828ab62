package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/rubbank/rubbank-api/internal/domain"
	"github.com/rubbank/rubbank-api/internal/logging"
)

const (
	defaultAgency  = 1
	bcryptCost     = 10
	accountNumbers = 8 // digits in a generated account number
)

var defaultBalance = decimal.NewFromInt(100)

type userRepo interface {
	Create(ctx context.Context, tx *sql.Tx, u *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetVerified(ctx context.Context, id uuid.UUID) error
}

type accountCreator interface {
	Create(ctx context.Context, tx *sql.Tx, account *domain.Account) error
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]domain.Account, error)
}

type mailSender interface {
	Send(to, subject, body string) error
}

type UserService struct {
	db       *sql.DB
	users    userRepo
	accounts accountCreator
	mail     mailSender
}

func NewUserService(db *sql.DB, users userRepo, accounts accountCreator, mail mailSender) *UserService {
	return &UserService{db: db, users: users, accounts: accounts, mail: mail}
}

type OnboardRequest struct {
	Name                string
	Email               string
	Phone               string
	Password            string
	TransactionPassword string
}

// Onboard creates a user and their first account in one transaction. The
// account opens ACTIVE with the default balance and agency.
func (s *UserService) Onboard(ctx context.Context, req OnboardRequest) (*domain.User, *domain.Account, error) {
	log := logging.FromContext(ctx)

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("Onboard: hash password: %w", err)
	}
	txPasswordHash, err := bcrypt.GenerateFromPassword([]byte(req.TransactionPassword), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("Onboard: hash transaction password: %w", err)
	}

	accountNumber, err := generateAccountNumber()
	if err != nil {
		return nil, nil, fmt.Errorf("Onboard: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(passwordHash),
		CreatedAt:    now,
	}
	account := &domain.Account{
		ID:                      uuid.New(),
		OwnerID:                 user.ID,
		AccountNumber:           accountNumber,
		Agency:                  defaultAgency,
		Balance:                 defaultBalance,
		Version:                 1,
		Status:                  domain.AccountStatusActive,
		TransactionPasswordHash: string(txPasswordHash),
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("Onboard: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.users.Create(ctx, tx, user); err != nil {
		return nil, nil, fmt.Errorf("Onboard: %w", err)
	}
	if err := s.accounts.Create(ctx, tx, account); err != nil {
		return nil, nil, fmt.Errorf("Onboard: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("Onboard: commit: %w", err)
	}

	log.Info("user onboarded", "user_id", user.ID, "account_id", account.ID)

	// Fire and forget: mail failures never undo the onboarding.
	go func() {
		if err := s.mail.Send(user.Email, "Welcome to RubBank", verificationBody(user.Name)); err != nil {
			log.Warn("verification mail failed", "user_id", user.ID, "error", err)
		}
	}()

	return user, account, nil
}

// VerifyEmail marks a user verified and notifies them.
func (s *UserService) VerifyEmail(ctx context.Context, userID uuid.UUID) error {
	log := logging.FromContext(ctx)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("VerifyEmail: %w", err)
	}
	if err := s.users.SetVerified(ctx, userID); err != nil {
		return fmt.Errorf("VerifyEmail: %w", err)
	}

	go func() {
		if err := s.mail.Send(user.Email, "Account verified", "Your RubBank account is now verified."); err != nil {
			log.Warn("verification confirmation mail failed", "user_id", userID, "error", err)
		}
	}()

	return nil
}

// ChangePassword swaps the login password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	log := logging.FromContext(ctx)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ChangePassword: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return fmt.Errorf("ChangePassword: %w", domain.ErrIncorrectPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return fmt.Errorf("ChangePassword: hash: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("ChangePassword: %w", err)
	}

	go func() {
		if err := s.mail.Send(user.Email, "Password changed", "Your RubBank password was changed."); err != nil {
			log.Warn("password change mail failed", "user_id", userID, "error", err)
		}
	}()

	return nil
}

func (s *UserService) GetUserAccounts(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	accounts, err := s.accounts.GetByOwnerID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetUserAccounts: %w", err)
	}
	return accounts, nil
}

func generateAccountNumber() (int64, error) {
	// Leading digit is never zero so the number keeps its width.
	max := big.NewInt(0).Exp(big.NewInt(10), big.NewInt(accountNumbers-1), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return 0, fmt.Errorf("generateAccountNumber: %w", err)
	}
	return n.Int64() + max.Int64(), nil
}

func verificationBody(name string) string {
	return fmt.Sprintf("Hello %s, welcome to RubBank. Please verify your email to activate all features.", name)
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/rubbank/rubbank-api/internal/auth"
	"github.com/rubbank/rubbank-api/internal/domain"
	"github.com/rubbank/rubbank-api/internal/logging"
	"github.com/rubbank/rubbank-api/internal/service"
)

type userService interface {
	Onboard(ctx context.Context, req service.OnboardRequest) (*domain.User, *domain.Account, error)
	VerifyEmail(ctx context.Context, userID uuid.UUID) error
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
	GetUserAccounts(ctx context.Context, userID uuid.UUID) ([]domain.Account, error)
}

type UserHandler struct {
	users userService
}

func NewUserHandler(users userService) *UserHandler {
	return &UserHandler{users: users}
}

type onboardRequest struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Password            string `json:"password"`
	TransactionPassword string `json:"transaction_password"`
}

func (r onboardRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "required"})
	}
	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "required"})
	}
	if len(r.TransactionPassword) < 4 {
		errs = append(errs, FieldError{Field: "transaction_password", Message: "must have at least 4 characters"})
	}
	return errs
}

type onboardResponse struct {
	UserID     uuid.UUID   `json:"user_id"`
	AccountIDs []uuid.UUID `json:"accounts_id"`
}

func (h *UserHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	var req onboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	user, account, err := h.users.Onboard(r.Context(), service.OnboardRequest{
		Name:                req.Name,
		Email:               req.Email,
		Phone:               req.Phone,
		Password:            req.Password,
		TransactionPassword: req.TransactionPassword,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("onboarding failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, onboardResponse{
		UserID:     user.ID,
		AccountIDs: []uuid.UUID{account.ID},
	})
}

func (h *UserHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	if err := h.users.VerifyEmail(r.Context(), userID); err != nil {
		logging.FromContext(r.Context()).Warn("email verification failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, nil)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r changePasswordRequest) Validate() []FieldError {
	var errs []FieldError
	if r.CurrentPassword == "" {
		errs = append(errs, FieldError{Field: "current_password", Message: "required"})
	}
	if len(r.NewPassword) < 8 {
		errs = append(errs, FieldError{Field: "new_password", Message: "must have at least 8 characters"})
	}
	return errs
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	if err := h.users.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		logging.FromContext(r.Context()).Warn("password change failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, nil)
}

type accountDTO struct {
	ID            uuid.UUID `json:"id"`
	AccountNumber int64     `json:"account_number"`
	Agency        int       `json:"agency"`
	Status        string    `json:"status"`
}

func (h *UserHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	accounts, err := h.users.GetUserAccounts(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list accounts", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]accountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = accountDTO{
			ID:            a.ID,
			AccountNumber: a.AccountNumber,
			Agency:        a.Agency,
			Status:        string(a.Status),
		}
	}

	RespondSuccess(w, http.StatusOK, dtos)
}

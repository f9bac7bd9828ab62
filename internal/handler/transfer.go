package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rubbank/rubbank-api/internal/auth"
	"github.com/rubbank/rubbank-api/internal/domain"
	"github.com/rubbank/rubbank-api/internal/logging"
	"github.com/rubbank/rubbank-api/internal/service/transfer"
)

const dateLayout = "2006-01-02"

type transferService interface {
	Create(ctx context.Context, req transfer.CreateRequest) (*domain.Transfer, error)
	List(ctx context.Context, q transfer.ListQuery) ([]transfer.ListItem, error)
	GetDetail(ctx context.Context, transferID, userID uuid.UUID) (*transfer.Detail, error)
}

type securityGate interface {
	VerifyTransactionalPassword(ctx context.Context, account *domain.Account, password string) error
}

type TransferHandler struct {
	transfers transferService
	gate      securityGate
	accounts  accountGetter
	loc       *time.Location
}

func NewTransferHandler(transfers transferService, gate securityGate, accounts accountGetter, loc *time.Location) *TransferHandler {
	return &TransferHandler{
		transfers: transfers,
		gate:      gate,
		accounts:  accounts,
		loc:       loc,
	}
}

type createTransferRequest struct {
	AccountNumberTo       int64  `json:"account_number_to"`
	Value                 string `json:"value"`
	TransactionalPassword string `json:"transactional_password"`
	TimeToTransfer        string `json:"time_to_transfer"`
}

func (r createTransferRequest) Validate(loc *time.Location) (decimal.Decimal, *time.Time, []FieldError) {
	var errs []FieldError

	if r.AccountNumberTo <= 0 {
		errs = append(errs, FieldError{Field: "account_number_to", Message: "must be a positive integer"})
	}
	if r.TransactionalPassword == "" {
		errs = append(errs, FieldError{Field: "transactional_password", Message: "required"})
	}

	value, err := decimal.NewFromString(r.Value)
	if err != nil {
		errs = append(errs, FieldError{Field: "value", Message: "must be a decimal number"})
	} else if !value.IsPositive() {
		errs = append(errs, FieldError{Field: "value", Message: "must be greater than 0"})
	}

	var when *time.Time
	if r.TimeToTransfer != "" {
		t, err := time.ParseInLocation(dateLayout, r.TimeToTransfer, loc)
		if err != nil {
			errs = append(errs, FieldError{Field: "time_to_transfer", Message: "must be a date in YYYY-MM-DD format"})
		} else {
			when = &t
		}
	}

	return value, when, errs
}

type transferCreatedDTO struct {
	Status string          `json:"status"`
	Time   time.Time       `json:"time"`
	Value  decimal.Decimal `json:"value"`
}

func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	account, appErr := ownedAccountFromPath(r, h.accounts)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req createTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	value, when, fields := req.Validate(h.loc)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	if err := h.gate.VerifyTransactionalPassword(r.Context(), account, req.TransactionalPassword); err != nil {
		log.Warn("transfer authorization failed", "account_id", account.ID, "error", err)
		RespondDomainError(w, err)
		return
	}

	t, err := h.transfers.Create(r.Context(), transfer.CreateRequest{
		FromAccountID:   account.ID,
		ToAccountNumber: req.AccountNumberTo,
		Value:           value,
		TimeToTransfer:  when,
	})
	if err != nil {
		log.Warn("transfer creation failed", "account_id", account.ID, "error", err)
		RespondDomainError(w, err)
		return
	}

	when = &t.UpdatedAt
	if t.Status == domain.TransferStatusScheduled && t.TimeToTransfer != nil {
		when = t.TimeToTransfer
	}

	RespondSuccess(w, http.StatusCreated, transferCreatedDTO{
		Status: string(t.Status),
		Time:   *when,
		Value:  t.Value,
	})
}

type transferListItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	Value     decimal.Decimal `json:"value"`
	Direction string          `json:"direction"`
	Time      time.Time       `json:"time"`
	Status    string          `json:"status"`
}

func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	account, appErr := ownedAccountFromPath(r, h.accounts)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	q, fields := h.parseListQuery(r, account.ID)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	items, err := h.transfers.List(r.Context(), q)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list transfers", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]transferListItemDTO, len(items))
	for i, it := range items {
		dtos[i] = transferListItemDTO{
			ID:        it.ID,
			Value:     it.Value,
			Direction: string(it.Direction),
			Time:      it.Time,
			Status:    string(it.Status),
		}
	}

	RespondSuccess(w, http.StatusOK, map[string]any{"transfers": dtos})
}

func (h *TransferHandler) parseListQuery(r *http.Request, accountID uuid.UUID) (transfer.ListQuery, []FieldError) {
	var errs []FieldError
	q := transfer.ListQuery{AccountID: accountID}

	switch d := r.URL.Query().Get("direction"); d {
	case "", "BOTH":
		q.Direction = domain.DirectionBoth
	case "IN":
		q.Direction = domain.DirectionIn
	case "OUT":
		q.Direction = domain.DirectionOut
	default:
		errs = append(errs, FieldError{Field: "direction", Message: "must be IN, OUT, or BOTH"})
	}

	switch s := r.URL.Query().Get("status"); s {
	case "", "DONE":
		q.Status = domain.TransferStatusDone
	case "SCHEDULED":
		q.Status = domain.TransferStatusScheduled
	default:
		errs = append(errs, FieldError{Field: "status", Message: "must be DONE or SCHEDULED"})
	}

	if p := r.URL.Query().Get("page"); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil || page < 0 {
			errs = append(errs, FieldError{Field: "page", Message: "must be a non-negative integer"})
		} else {
			q.Page = page
		}
	}

	if s := r.URL.Query().Get("start"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, h.loc)
		if err != nil {
			errs = append(errs, FieldError{Field: "start", Message: "must be a date in YYYY-MM-DD format"})
		} else {
			q.Start = &t
		}
	}
	if e := r.URL.Query().Get("end"); e != "" {
		t, err := time.ParseInLocation(dateLayout, e, h.loc)
		if err != nil {
			errs = append(errs, FieldError{Field: "end", Message: "must be a date in YYYY-MM-DD format"})
		} else {
			// Inclusive end of day.
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
			q.End = &t
		}
	}
	if q.Start != nil && q.End != nil && q.End.Before(*q.Start) {
		errs = append(errs, FieldError{Field: "start", Message: "must not be after end"})
	}

	return q, errs
}

type transferPartyDTO struct {
	Number int64  `json:"number"`
	Agency int    `json:"agency"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
}

type transferDetailDTO struct {
	Status         string           `json:"status"`
	Value          decimal.Decimal  `json:"value"`
	TimeOfTransfer time.Time        `json:"time_of_transfer"`
	Direction      string           `json:"direction"`
	From           transferPartyDTO `json:"from"`
	To             transferPartyDTO `json:"to"`
}

func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	transferID, err := uuid.Parse(r.PathValue("transferId"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	d, err := h.transfers.GetDetail(r.Context(), transferID, userID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("transfer detail lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, transferDetailDTO{
		Status:         string(d.Status),
		Value:          d.Value,
		TimeOfTransfer: d.TimeOfTransfer,
		Direction:      string(d.Direction),
		From: transferPartyDTO{
			Number: d.From.AccountNumber,
			Agency: d.From.Agency,
			Name:   d.From.Name,
			Email:  d.From.Email,
			Phone:  d.From.Phone,
		},
		To: transferPartyDTO{
			Number: d.To.AccountNumber,
			Agency: d.To.Agency,
			Name:   d.To.Name,
			Email:  d.To.Email,
			Phone:  d.To.Phone,
		},
	})
}

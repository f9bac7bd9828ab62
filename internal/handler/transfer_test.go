package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubbank/rubbank-api/internal/auth"
	"github.com/rubbank/rubbank-api/internal/domain"
	"github.com/rubbank/rubbank-api/internal/service/transfer"
)

type mockTransferService struct {
	created *domain.Transfer
	err     error
	gotReq  transfer.CreateRequest
}

func (m *mockTransferService) Create(_ context.Context, req transfer.CreateRequest) (*domain.Transfer, error) {
	m.gotReq = req
	return m.created, m.err
}

func (m *mockTransferService) List(context.Context, transfer.ListQuery) ([]transfer.ListItem, error) {
	return nil, nil
}

func (m *mockTransferService) GetDetail(context.Context, uuid.UUID, uuid.UUID) (*transfer.Detail, error) {
	return nil, domain.ErrNotFound
}

type mockGate struct{ err error }

func (m *mockGate) VerifyTransactionalPassword(context.Context, *domain.Account, string) error {
	return m.err
}

type mockAccountGetter struct {
	account *domain.Account
	err     error
}

func (m *mockAccountGetter) GetByID(context.Context, uuid.UUID) (*domain.Account, error) {
	return m.account, m.err
}

func testAccount(ownerID uuid.UUID) *domain.Account {
	return &domain.Account{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		AccountNumber: 11111111,
		Agency:        1,
		Balance:       decimal.NewFromInt(100),
		Status:        domain.AccountStatusActive,
	}
}

func createTransferReq(t *testing.T, userID uuid.UUID, accountID uuid.UUID, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/"+accountID.String()+"/transfers", strings.NewReader(body))
	req.SetPathValue("accountId", accountID.String())
	return req.WithContext(auth.ContextWithUserID(req.Context(), userID))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCreateTransfer_Success(t *testing.T) {
	userID := uuid.New()
	account := testAccount(userID)
	done := &domain.Transfer{
		ID:        uuid.New(),
		Value:     decimal.NewFromInt(30),
		Status:    domain.TransferStatusDone,
		UpdatedAt: time.Now().UTC(),
	}
	svc := &mockTransferService{created: done}
	h := NewTransferHandler(svc, &mockGate{}, &mockAccountGetter{account: account}, time.UTC)

	body := `{"account_number_to": 22222222, "value": "30.00", "transactional_password": "4242"}`
	rec := httptest.NewRecorder()
	h.Create(rec, createTransferReq(t, userID, account.ID, body))

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, account.ID, svc.gotReq.FromAccountID)
	assert.Equal(t, int64(22222222), svc.gotReq.ToAccountNumber)
	assert.True(t, svc.gotReq.Value.Equal(decimal.NewFromInt(30)))
}

func TestCreateTransfer_WrongPassword(t *testing.T) {
	userID := uuid.New()
	account := testAccount(userID)
	h := NewTransferHandler(
		&mockTransferService{},
		&mockGate{err: domain.ErrIncorrectPassword},
		&mockAccountGetter{account: account},
		time.UTC,
	)

	body := `{"account_number_to": 22222222, "value": "30.00", "transactional_password": "nope"}`
	rec := httptest.NewRecorder()
	h.Create(rec, createTransferReq(t, userID, account.ID, body))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INCORRECT_TRANSACTIONAL_PASSWORD", resp.Error.Code)
}

func TestCreateTransfer_ForeignAccountReadsAsNotFound(t *testing.T) {
	account := testAccount(uuid.New())
	h := NewTransferHandler(&mockTransferService{}, &mockGate{}, &mockAccountGetter{account: account}, time.UTC)

	body := `{"account_number_to": 22222222, "value": "30.00", "transactional_password": "4242"}`
	rec := httptest.NewRecorder()
	h.Create(rec, createTransferReq(t, uuid.New(), account.ID, body))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "RESOURCE_NOT_FOUND", resp.Error.Code)
}

func TestCreateTransfer_Validation(t *testing.T) {
	userID := uuid.New()
	account := testAccount(userID)

	tests := []struct {
		name string
		body string
	}{
		{"negative value", `{"account_number_to": 22222222, "value": "-5", "transactional_password": "4242"}`},
		{"non-numeric value", `{"account_number_to": 22222222, "value": "abc", "transactional_password": "4242"}`},
		{"missing password", `{"account_number_to": 22222222, "value": "30.00"}`},
		{"bad date", `{"account_number_to": 22222222, "value": "30.00", "transactional_password": "4242", "time_to_transfer": "tomorrow"}`},
		{"missing destination", `{"value": "30.00", "transactional_password": "4242"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTransferHandler(&mockTransferService{}, &mockGate{}, &mockAccountGetter{account: account}, time.UTC)
			rec := httptest.NewRecorder()
			h.Create(rec, createTransferReq(t, userID, account.ID, tt.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
		})
	}
}

func TestListTransfers_QueryValidation(t *testing.T) {
	userID := uuid.New()
	account := testAccount(userID)
	h := NewTransferHandler(&mockTransferService{}, &mockGate{}, &mockAccountGetter{account: account}, time.UTC)

	tests := []struct {
		name  string
		query string
	}{
		{"bad direction", "direction=SIDEWAYS"},
		{"bad status", "status=PENDING"},
		{"negative page", "page=-1"},
		{"bad start date", "start=03-10-2026"},
		{"start after end", "start=2026-03-10&end=2026-03-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+account.ID.String()+"/transfers?"+tt.query, nil)
			req.SetPathValue("accountId", account.ID.String())
			req = req.WithContext(auth.ContextWithUserID(req.Context(), userID))

			rec := httptest.NewRecorder()
			h.List(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
		})
	}
}

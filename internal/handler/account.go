package handler

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type AccountHandler struct {
	accounts accountGetter
}

func NewAccountHandler(accounts accountGetter) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type balanceDTO struct {
	Balance decimal.Decimal `json:"balance"`
}

func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	account, appErr := ownedAccountFromPath(r, h.accounts)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	RespondSuccess(w, http.StatusOK, balanceDTO{Balance: account.Balance})
}

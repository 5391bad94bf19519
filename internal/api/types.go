package api

import (
	"github.com/theirongolddev/budgie/internal/model"

	"github.com/shopspring/decimal"
)

// messageResponse is the acknowledgement body every mutating endpoint returns.
type messageResponse struct {
	Message string `json:"message"`
}

// setBudgetRequest is the POST /set_budget body.
type setBudgetRequest struct {
	UserID model.UserID `json:"user_id"`
	Budget float64      `json:"budget"`
}

// addExpenditureRequest is the POST /add_expenditure body.
type addExpenditureRequest struct {
	UserID model.UserID `json:"user_id"`
	Amount float64      `json:"amount"`
	Date   string       `json:"date"`
	Note   string       `json:"note"`
}

// NewExpenditure is a pending entry ready to be sent.
type NewExpenditure struct {
	Amount decimal.Decimal
	Date   string
	Note   string
}

// Snapshot is a consistent view of the remote ledger for one user.
type Snapshot struct {
	Profile      model.Profile
	Expenditures []model.Expenditure
}

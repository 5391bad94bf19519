// Package model defines domain types for budgie budgets and expenditures.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used on the wire and in the UI.
const DateLayout = "2006-01-02"

var (
	// ErrInvalidAmount indicates an amount string that is not a decimal number.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidDate indicates a date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date (expected YYYY-MM-DD)")
)

// UserID is the opaque session identifier issued by the remote service.
// The service returns numbers; the client keeps the JSON text form.
type UserID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *UserID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as JSON numbers so they round-trip to the
// service in the form it issued them.
func (id UserID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// String implements fmt.Stringer.
func (id UserID) String() string { return string(id) }

// Profile is the client's read-through copy of the remote user record.
type Profile struct {
	Username string          `json:"username"`
	Budget   decimal.Decimal `json:"budget"`
}

// Expenditure is a single logged spend.
// ID is opaque and may be absent; entries are ordered, not keyed.
type Expenditure struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
	Note   string          `json:"note"`
}

// Total sums the amounts of all entries.
func Total(entries []Expenditure) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// Remaining returns budget minus the sum of all expenditure amounts.
func Remaining(p Profile, entries []Expenditure) decimal.Decimal {
	return p.Budget.Sub(Total(entries))
}

// SpentPercent returns spent/budget in the 0.0-1.0+ range, or 0 for a zero budget.
func SpentPercent(budget, remaining decimal.Decimal) float64 {
	if !budget.IsPositive() {
		return 0
	}
	pct, _ := budget.Sub(remaining).Div(budget).Float64()
	if pct < 0 {
		return 0
	}
	return pct
}

// ParseAmount parses a user-entered decimal amount.
// Both dot and comma separators are accepted; sign checks are left to callers.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimPrefix(s, "$")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// ParseDate validates a YYYY-MM-DD date. An empty string yields today's date.
func ParseDate(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.Format(DateLayout), nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t.Format(DateLayout), nil
}

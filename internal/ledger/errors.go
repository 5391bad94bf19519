package ledger

import (
	"errors"

	"github.com/theirongolddev/budgie/internal/model"
)

// Validation errors. These are detected before any request is sent and carry
// user-facing text.
var (
	ErrInvalidBudget = errors.New("budget must be a positive number")
	ErrInvalidAmount = errors.New("amount must be a positive number")
	ErrOverspend     = errors.New("amount exceeds remaining budget")
)

var (
	// ErrBusy is returned while another mutation is still in flight.
	ErrBusy = errors.New("another request is in progress")
	// ErrStale means a newer load or a logout superseded this result.
	ErrStale = errors.New("result superseded")
	// ErrNoSession means no user is logged in.
	ErrNoSession = errors.New("not logged in")
	// ErrNotRefreshed means a write was stored but the follow-up reload failed.
	ErrNotRefreshed = errors.New("saved, but the ledger could not be reloaded")
)

// FailureNotice is the generic text shown for transport and server failures.
const FailureNotice = "Request failed. Please try again."

// IsValidation reports whether err was raised locally before any request.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidBudget) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrOverspend) ||
		errors.Is(err, model.ErrInvalidDate)
}

// Notice maps err to the text a user should see. Nil yields "".
func Notice(err error) string {
	switch {
	case err == nil, errors.Is(err, ErrStale):
		return ""
	case errors.Is(err, model.ErrInvalidDate):
		return model.ErrInvalidDate.Error()
	case errors.Is(err, ErrInvalidBudget):
		return ErrInvalidBudget.Error()
	case errors.Is(err, ErrInvalidAmount):
		return ErrInvalidAmount.Error()
	case errors.Is(err, ErrOverspend):
		return ErrOverspend.Error()
	case errors.Is(err, ErrNotRefreshed):
		return "Saved, but the ledger could not be reloaded. Press r to retry."
	case errors.Is(err, ErrBusy):
		return "Please wait for the current request to finish."
	case errors.Is(err, ErrNoSession):
		return "You are not logged in."
	default:
		return FailureNotice
	}
}

package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status_code"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldUserID    = "user_id"
	FieldAmount    = "amount"
	FieldCount     = "count"
	FieldGen       = "generation"
)

// Component names
const (
	ComponentApp     = "app"
	ComponentAPI     = "api"
	ComponentStore   = "store"
	ComponentSession = "session"
	ComponentAuth    = "auth"
	ComponentLedger  = "ledger"
	ComponentTUI     = "tui"
)

// Operation names
const (
	OpLogin          = "login"
	OpRegister       = "register"
	OpLoad           = "load"
	OpSetBudget      = "set_budget"
	OpAddExpenditure = "add_expenditure"
	OpLogout         = "logout"
)

package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldAccountID  = "account_id"
	FieldUsername   = "username"
	FieldExpenseID  = "expense_id"
	FieldAmount     = "amount"
	FieldCategory   = "category"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentStorage  = "storage"
	ComponentIdentity = "identity"
	ComponentLedger   = "ledger"
	ComponentSession  = "session"
	ComponentSweeper  = "session_sweeper"
)

// Operations defines standard operation names
const (
	OpRegister       = "register"
	OpLogin          = "login"
	OpLogout         = "logout"
	OpChangePassword = "change_password"
	OpSetIncome      = "set_income"
	OpCreate         = "create"
	OpList           = "list"
	OpDelete         = "delete"
	OpSweep          = "sweep"
	OpStartup        = "startup"
	OpShutdown       = "shutdown"
)

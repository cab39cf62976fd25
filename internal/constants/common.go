package constants

// Common string constants used throughout the codebase
const (
	// Log levels
	ErrorLevel = "error"

	// Environments
	ProdEnvironment = "prod"
	TestEnvironment = "test"

	// Service name attached to structured logs
	ServiceName = "remote-accounts"
)

// HTTP headers
const (
	CorrelationIDHeader = "X-Correlation-ID"
	APIKeyHeader        = "X-API-Key"
	MessageIDAttribute  = "MessageID"
)

// Instruction kinds as they appear in logs, metrics and the audit API
const (
	KindProvideAccount   = "provide_account"
	KindExecuteOnAccount = "execute_on_account"
	KindDeposit          = "deposit"
	KindUpdateOwner      = "update_owner"
)

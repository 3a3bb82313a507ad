package importerr

// Code is a machine-readable error code identifying which part of the
// error taxonomy an import failure belongs to.
type Code string

const (
	CodeConnectFailure     Code = "CONNECT_FAILURE"
	CodeSessionBad         Code = "SESSION_BAD"
	CodeTransientFailure   Code = "TRANSIENT_FAILURE"
	CodeStatementError     Code = "STATEMENT_ERROR"
	CodeMalformedInput     Code = "MALFORMED_INPUT"
	CodeInvariantViolation Code = "INVARIANT_VIOLATION"
	CodeRetriesExhausted   Code = "RETRIES_EXHAUSTED"
	CodeLockUnavailable    Code = "LOCK_UNAVAILABLE"
)

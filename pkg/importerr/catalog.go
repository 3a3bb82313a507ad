package importerr

import "strconv"

// ConnectFailure wraps a connection-factory dial error.
func ConnectFailure(cause error) *Error {
	return Wrap(CodeConnectFailure, "failed to connect to the graph database", cause)
}

// SessionBad reports a session that went unhealthy following a failed batch.
func SessionBad(cause error) *Error {
	return Wrap(CodeSessionBad, "session reported unhealthy after a failed batch", cause)
}

// TransientFailure wraps a retryable per-batch failure.
func TransientFailure(cause error) *Error {
	return Wrap(CodeTransientFailure, "transient failure executing batch", cause)
}

// StatementError wraps a per-statement execution failure.
func StatementError(line int, cause error) *Error {
	return Wrap(CodeStatementError, statementErrorMessage(line), cause)
}

func statementErrorMessage(line int) string {
	if line <= 0 {
		return "statement execution failed"
	}
	return "statement at line " + strconv.Itoa(line) + " failed"
}

// MalformedInput wraps a tokenizer failure (unterminated quote at EOF).
func MalformedInput(cause error) *Error {
	return Wrap(CodeMalformedInput, "malformed input stream", cause)
}

// InvariantViolation reports a programming error (double-fill, promise
// destroyed unfilled) that should never happen in correct code.
func InvariantViolation(message string) *Error {
	return New(CodeInvariantViolation, message)
}

// RetriesExhausted reports a batch that never succeeded within the
// configured attempt bound.
func RetriesExhausted(batchIndex, attempts int, cause error) *Error {
	return Wrap(CodeRetriesExhausted,
		"batch "+strconv.Itoa(batchIndex)+" exhausted "+strconv.Itoa(attempts)+" attempts", cause)
}

// LockUnavailable reports a run-lock acquisition failure.
func LockUnavailable(target string, cause error) *Error {
	return Wrap(CodeLockUnavailable, "could not acquire run lock for "+target, cause)
}

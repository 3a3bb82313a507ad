package importerr

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := ConnectFailure(cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to see through Wrap")
	}
	if err.Code() != CodeConnectFailure {
		t.Errorf("Code() = %v, want %v", err.Code(), CodeConnectFailure)
	}
}

func TestFatalClassification(t *testing.T) {
	cases := []struct {
		err   *Error
		fatal bool
	}{
		{SessionBad(nil), false},
		{TransientFailure(nil), false},
		{ConnectFailure(nil), true},
		{MalformedInput(nil), true},
		{RetriesExhausted(0, 5, nil), true},
		{LockUnavailable("bolt://x", nil), true},
	}
	for _, tc := range cases {
		if tc.err.Fatal() != tc.fatal {
			t.Errorf("%s: Fatal() = %v, want %v", tc.err.Code(), tc.err.Fatal(), tc.fatal)
		}
	}
}

func TestExitCodeIsAlwaysOneForFatalCodes(t *testing.T) {
	fatal := []*Error{
		ConnectFailure(nil),
		MalformedInput(nil),
		StatementError(0, nil),
		RetriesExhausted(0, 0, nil),
		LockUnavailable("x", nil),
		InvariantViolation("unreachable"),
	}
	for _, e := range fatal {
		if e.ExitCode() != 1 {
			t.Errorf("%s: ExitCode() = %d, want 1", e.Code(), e.ExitCode())
		}
	}
}

func TestErrorMessageIncludesCauseWhenWrapped(t *testing.T) {
	err := StatementError(12, errors.New("syntax error"))
	msg := err.Error()
	if !strings.Contains(msg, "syntax error") {
		t.Fatalf("error message %q does not include the wrapped cause", msg)
	}
}

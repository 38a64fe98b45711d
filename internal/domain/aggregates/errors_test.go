package aggregates

import (
	"errors"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := NewError(CodeDanglingReference, "Schema.Get", "parent 4 missing", nil)
	if got := err.Error(); got != "Schema.Get: parent 4 missing (dangling_reference)" {
		t.Fatalf("Error(): got=%q", got)
	}
	if got := (&Error{Code: CodeInternal}).Error(); got != "internal" {
		t.Fatalf("bare code: got=%q", got)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(CodeRetryable, "op", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if CodeOf(err) != CodeRetryable {
		t.Fatalf("code: got=%q", CodeOf(err))
	}
	if Wrap(CodeInternal, "op", nil) != nil {
		t.Fatalf("Wrap(nil) should be nil")
	}
}

func TestCodeHelpers(t *testing.T) {
	if !IsDanglingReference(NewError(CodeDanglingReference, "", "", nil)) {
		t.Fatalf("IsDanglingReference false")
	}
	if !IsInvariantViolation(NewError(CodeInvariantViolation, "", "", nil)) {
		t.Fatalf("IsInvariantViolation false")
	}
	if IsCode(errors.New("plain"), CodeInternal) {
		t.Fatalf("plain error should carry no code")
	}
	if c := ContentTypeRepositoryContract; c.WriteTxOwnership != WriteTxOwnedByCaller || c.ReadPolicy != ReadPolicyFullAggregate {
		t.Fatalf("contract: want caller-owned tx + full reads, got=%s/%s", c.WriteTxOwnership, c.ReadPolicy)
	}
}

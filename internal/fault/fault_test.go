package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := Errorf(Type, 4, "type mismatch: %s ~ %s", "int", "bool")
	want := "TypeError: line 4: type mismatch: int ~ bool"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestErrorStringNoLine(t *testing.T) {
	err := New(Interrupted, 0, "execution cancelled")
	want := "Interrupted: execution cancelled"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestKindOfWrapped(t *testing.T) {
	base := Errorf(ZeroDivision, 7, "division by zero")
	wrapped := fmt.Errorf("running loop body: %w", base)
	if got := KindOf(wrapped); got != ZeroDivision {
		t.Errorf("KindOf(wrapped) = %s, want %s", got, ZeroDivision)
	}
	if !IsKind(wrapped, ZeroDivision) {
		t.Error("IsKind(wrapped, ZeroDivision) = false")
	}
	if IsKind(wrapped, Name) {
		t.Error("IsKind(wrapped, Name) = true")
	}
	if got := LineOf(wrapped); got != 7 {
		t.Errorf("LineOf(wrapped) = %d, want 7", got)
	}
}

func TestKindOfForeignError(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != Internal {
		t.Errorf("KindOf(plain) = %s, want %s", got, Internal)
	}
	if LineOf(errors.New("plain")) != 0 {
		t.Error("LineOf(plain) != 0")
	}
}

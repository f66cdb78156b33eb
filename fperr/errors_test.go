//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package fperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")
	wrapped := fmt.Errorf("wrap: %w", New(Timeout, "wire.RecvFrame", base))

	kind, ok := KindOf(wrapped)
	if !ok {
		t.Fatalf("KindOf: expected a *Error in chain")
	}
	if kind != Timeout {
		t.Errorf("KindOf = %v, want %v", kind, Timeout)
	}
}

func TestKindOfPlainError(t *testing.T) {
	_, ok := KindOf(errors.New("plain"))
	if ok {
		t.Errorf("KindOf on a plain error should report ok=false")
	}
}

func TestErrorString(t *testing.T) {
	err := Newf(ParameterInvalid, "heparams.Validate", "q=%d not prime", 100)
	want := "ParameterInvalid: heparams.Validate: q=100 not prime"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

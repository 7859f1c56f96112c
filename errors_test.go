// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sdd

import (
	"errors"
	"testing"
)

func TestEvaluationErrorAddStep(t *testing.T) {
	base := &EvaluationError{Err: errTop, Steps: []string{"inner"}}
	outer := base.addStep("outer")
	if len(outer.Steps) != 2 || outer.Steps[0] != "outer" || outer.Steps[1] != "inner" {
		t.Fatalf("unexpected steps: %v", outer.Steps)
	}
	if len(base.Steps) != 1 {
		t.Fatal("addStep must not mutate the receiver")
	}
}

func TestEvaluationErrorUnwrapsToTop(t *testing.T) {
	err := &EvaluationError{Err: &TopError{Op: "Sum", Err: errTop}}
	if !errors.Is(err, errTop) {
		t.Fatal("EvaluationError should unwrap through TopError to errTop")
	}
}

func TestIsInterrupt(t *testing.T) {
	if !IsInterrupt(errInterrupt) {
		t.Fatal("IsInterrupt(errInterrupt) should be true")
	}
	wrapped := &EvaluationError{Err: errInterrupt}
	if !IsInterrupt(wrapped) {
		t.Fatal("IsInterrupt should see through EvaluationError wrapping")
	}
	if IsInterrupt(errTop) {
		t.Fatal("errTop is not an interrupt")
	}
}

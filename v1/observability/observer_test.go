package observability

import (
	"errors"
	"testing"
)

func TestObserverFunc(t *testing.T) {
	var got OperationContext
	var obs Observer = ObserverFunc(func(ctx OperationContext) { got = ctx })

	obs.ObserveOperation(OperationContext{Component: "embedding", Operation: "encode", Size: 3})

	if got.Component != "embedding" || got.Operation != "encode" || got.Size != 3 {
		t.Errorf("unexpected operation context: %+v", got)
	}
}

func TestStatus(t *testing.T) {
	if s := Status(nil); s != "success" {
		t.Errorf("expected success, got %s", s)
	}
	if s := Status(errors.New("x")); s != "error" {
		t.Errorf("expected error, got %s", s)
	}
}

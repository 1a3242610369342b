package logging

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewOperationErrorNilPassthrough(t *testing.T) {
	if err := NewOperationError("decode", "req-1", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestOperationErrorFormatsAndUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := NewOperationError("analyzer.collect", "req-9", cause)

	if got, want := err.Error(), "analyzer.collect (request_id=req-9): boom"; got != want {
		t.Fatalf("unexpected message: got %q want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to reach the cause")
	}

	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got %T", err)
	}
	if opErr.Operation != "analyzer.collect" {
		t.Fatalf("unexpected operation: %s", opErr.Operation)
	}

	bare := NewOperationError("grpcclient.dial", "", cause)
	if got, want := bare.Error(), "grpcclient.dial: boom"; got != want {
		t.Fatalf("unexpected message: got %q want %q", got, want)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	logger, err := NewLogger("debug")
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug level to be enabled")
	}

	logger, err = NewLogger("nonsense")
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected unknown level to fall back to info")
	}
}

func TestWithOperationAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	WithOperation(zap.New(core), "usecase.process", "req-3").Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["operation"] != "usecase.process" || fields["request_id"] != "req-3" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

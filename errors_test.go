package mtbridge

import (
	"errors"
	"testing"
)

func TestConfigParseError(t *testing.T) {
	cause := errors.New("yaml: line 1: did not find expected node content")
	err := &ConfigParseError{Message: "invalid YAML", Cause: cause}

	if err.Error() != "config parse error: invalid YAML: yaml: line 1: did not find expected node content" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}

	err2 := &ConfigParseError{Message: "config is empty"}
	if err2.Error() != "config parse error: config is empty" {
		t.Errorf("unexpected error message: %s", err2.Error())
	}
}

func TestLoadError(t *testing.T) {
	inner := &ModelConstructionError{Message: "engine rejected config"}
	err := &LoadError{Key: "en-de", Cause: inner}

	if err.Error() != "failed to load model en-de: model construction error: engine rejected config" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	var mce *ModelConstructionError
	if !errors.As(err, &mce) {
		t.Error("LoadError should unwrap to ModelConstructionError")
	}

	var cpe *ConfigParseError
	if errors.As(err, &cpe) {
		t.Error("LoadError should not match ConfigParseError here")
	}
}

func TestModelNotLoadedError(t *testing.T) {
	err := &ModelNotLoadedError{Key: "fr-en"}
	if err.Error() != "model not loaded: fr-en" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestInvalidArgumentError(t *testing.T) {
	err := &InvalidArgumentError{Name: "key", Message: "must not be empty"}
	if err.Error() != "invalid argument key: must not be empty" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestAllocationError(t *testing.T) {
	outer := &AllocationError{Index: -1, Size: 64}
	if outer.Error() != "allocation failed: outer array of 64 bytes" {
		t.Errorf("unexpected error message: %s", outer.Error())
	}

	elem := &AllocationError{Index: 3, Size: 12}
	if elem.Error() != "allocation failed: element 3 (12 bytes)" {
		t.Errorf("unexpected error message: %s", elem.Error())
	}
}

func TestEngineInvocationError(t *testing.T) {
	cause := errors.New("worker crashed")
	err := &EngineInvocationError{Op: "pivot", Cause: cause, Retryable: true}

	if err.Error() != "engine error (pivot): worker crashed" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if !IsRetryable(err) {
		t.Error("error should be retryable")
	}
}

func TestCountMismatchError(t *testing.T) {
	err := &CountMismatchError{Expected: 3, Got: 2}
	if err.Error() != "translation count mismatch: expected 3, got 2" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

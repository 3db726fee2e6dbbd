package mtbridge

import "fmt"

// ConfigParseError indicates a malformed model configuration blob.
type ConfigParseError struct {
	Message string
	Cause   error
}

func (e *ConfigParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("config parse error: %s", e.Message)
}

func (e *ConfigParseError) Unwrap() error {
	return e.Cause
}

// ModelConstructionError indicates the engine rejected a valid-looking configuration.
type ModelConstructionError struct {
	Message string
	Cause   error
}

func (e *ModelConstructionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model construction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("model construction error: %s", e.Message)
}

func (e *ModelConstructionError) Unwrap() error {
	return e.Cause
}

// LoadError reports a failed model load for a cache key.
// Cause is a *ConfigParseError or a *ModelConstructionError.
type LoadError struct {
	Key   string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load model %s: %v", e.Key, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ModelNotLoadedError indicates a translation named a key absent from the cache.
type ModelNotLoadedError struct {
	Key string
}

func (e *ModelNotLoadedError) Error() string {
	return fmt.Sprintf("model not loaded: %s", e.Key)
}

// InvalidArgumentError indicates a missing or empty required parameter.
type InvalidArgumentError struct {
	Name    string
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Name, e.Message)
}

// AllocationError indicates a boundary buffer could not be allocated.
type AllocationError struct {
	Index int // Element being allocated, -1 for the outer array
	Size  int // Requested bytes
}

func (e *AllocationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("allocation failed: outer array of %d bytes", e.Size)
	}
	return fmt.Sprintf("allocation failed: element %d (%d bytes)", e.Index, e.Size)
}

// EngineInvocationError indicates the engine failed during translation or detection.
type EngineInvocationError struct {
	Op        string // "translate", "pivot", "detect"
	Cause     error
	Retryable bool // Whether the invocation can be retried
}

func (e *EngineInvocationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("engine error (%s): %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("engine error (%s)", e.Op)
}

func (e *EngineInvocationError) Unwrap() error {
	return e.Cause
}

// CountMismatchError indicates the engine returned a different number of results than inputs.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}

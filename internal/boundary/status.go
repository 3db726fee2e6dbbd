// Package boundary implements the status and memory contract of the C
// library without depending on cgo, so it can be tested directly.
package boundary

import (
	"errors"

	"github.com/ZaguanLabs/mtbridge"
)

// Status is the integer returned by every exported C entry point.
type Status int

const (
	StatusOK                Status = 0
	StatusInvalidArgument   Status = -1
	StatusConfigParse       Status = -2
	StatusModelConstruction Status = -3
	StatusModelNotLoaded    Status = -4
	StatusAllocation        Status = -5
	StatusEngineInvocation  Status = -6
	StatusInternal          Status = -7
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInvalidArgument:
		return "invalid argument"
	case StatusConfigParse:
		return "config parse error"
	case StatusModelConstruction:
		return "model construction error"
	case StatusModelNotLoaded:
		return "model not loaded"
	case StatusAllocation:
		return "allocation failure"
	case StatusEngineInvocation:
		return "engine invocation error"
	default:
		return "internal error"
	}
}

// StatusOf classifies err. A LoadError reports the status of its cause.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}

	var (
		invalid      *mtbridge.InvalidArgumentError
		parse        *mtbridge.ConfigParseError
		construction *mtbridge.ModelConstructionError
		notLoaded    *mtbridge.ModelNotLoadedError
		alloc        *mtbridge.AllocationError
		invocation   *mtbridge.EngineInvocationError
		mismatch     *mtbridge.CountMismatchError
	)

	switch {
	case errors.As(err, &invalid):
		return StatusInvalidArgument
	case errors.As(err, &parse):
		return StatusConfigParse
	case errors.As(err, &construction):
		return StatusModelConstruction
	case errors.As(err, &notLoaded):
		return StatusModelNotLoaded
	case errors.As(err, &alloc):
		return StatusAllocation
	case errors.As(err, &invocation), errors.As(err, &mismatch):
		return StatusEngineInvocation
	default:
		return StatusInternal
	}
}

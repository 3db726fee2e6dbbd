package boundary

import (
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Guard runs fn and converts its outcome to a Status. A panic inside fn is
// recovered and reported as StatusInternal; nothing escapes to the caller.
func Guard(logger zerolog.Logger, op string, fn func() error) (status Status) {
	defer func() {
		if r := recover(); r != nil {
			status = StatusInternal
			logger.Error().
				Str("op", op).
				Str("call_id", uuid.NewString()).
				Str("panic", fmt.Sprint(r)).
				Bytes("stack", debug.Stack()).
				Msg("recovered panic at library boundary")
		}
	}()

	err := fn()
	status = StatusOf(err)
	if status != StatusOK {
		logger.Error().
			Err(err).
			Str("op", op).
			Str("call_id", uuid.NewString()).
			Int("status", int(status)).
			Msg(status.String())
	}
	return status
}

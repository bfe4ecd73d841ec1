package engine

import (
	"errors"

	"github.com/loomknot/loom/internal/storage"
)

// recoverable reports whether a sub-step failure should be absorbed by the
// linking pass. This is the single place that decides what "fail soft" means:
// remote capability failures (timeouts, circuit open, malformed model output)
// and per-record persistence failures are absorbed and logged; invalid input
// is a caller error and propagates.
func recoverable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, storage.ErrInvalidInput) {
		return false
	}
	return true
}

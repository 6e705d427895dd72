package signals

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyConnected = errors.New("signals: callback already connected")
	ErrOwnerGone        = errors.New("signals: owner is gone")
	ErrAwaitCancelled   = errors.New("signals: await cancelled")
)

// DuplicateConnectionError is returned when a callback that is not reference
// counted is connected to a signal it is already connected to.
type DuplicateConnectionError struct {
	Signal   string
	Callback string
	Owner    string
	// OwnerGone is set when the owner was released before the connect.
	OwnerGone bool
}

func (e *DuplicateConnectionError) Error() string {
	if e.OwnerGone {
		return fmt.Sprintf("unable to connect signal '%s' to %s: object is gone", e.Signal, e.Callback)
	}
	return fmt.Sprintf("signal '%s' is already connected to %s in object %s", e.Signal, e.Callback, e.Owner)
}

func (e *DuplicateConnectionError) Is(target error) bool {
	return target == ErrAlreadyConnected || (target == ErrOwnerGone && e.OwnerGone)
}

package host

import "errors"

var (
	ErrUnknownSignal    = errors.New("host: unknown signal")
	ErrAlreadyConnected = errors.New("host: signal already routed")
	ErrNotConnected     = errors.New("host: signal is not routed")
	ErrObjectFreed      = errors.New("host: object is freed")
	ErrForeignGoroutine = errors.New("host: object used outside its goroutine")
)

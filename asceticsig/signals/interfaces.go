package signals

import (
	"github.com/krew-solutions/ascetic-signals-go/asceticsig/disposable"
)

// Observer receives the arguments of an emission.
type Observer func(args ...any)

type Emitter interface {
	Emit(args ...any) error
}

type Connector interface {
	Connect(observer Observer, flags ConnectFlags, observerID ...any) (disposable.Disposable, error)
	Disconnect(observer Observer, observerID ...any) error
}

type SignalField interface {
	Emitter
	Connector
	DisconnectAll() error
}

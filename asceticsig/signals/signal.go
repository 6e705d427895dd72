package signals

import (
	"errors"
	"reflect"

	"github.com/krew-solutions/ascetic-signals-go/asceticsig/deferred"
	"github.com/krew-solutions/ascetic-signals-go/asceticsig/disposable"
)

type binding struct {
	id       any
	observer Observer
}

func (b *binding) CallbackKey() any {
	return b.id
}

func (b *binding) Invoke(args []any) {
	if b.observer != nil {
		b.observer(args...)
	}
}

func (b *binding) String() string {
	if b.observer == nil {
		return DescribeCallback(b.id)
	}
	return DescribeCallback(b.observer)
}

// Signal is the field an entity exposes for one of its signals. It wraps the
// signal's dispatcher with observer-based connect and disconnect.
type Signal struct {
	dispatcher *Dispatcher
}

func NewSignal(owner OwnerRef, name string, fieldIndex int, opts ...Option) *Signal {
	return &Signal{dispatcher: NewDispatcher(owner, name, fieldIndex, opts...)}
}

func (s *Signal) Name() string {
	return s.dispatcher.SignalName()
}

func (s *Signal) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// Connect subscribes observer. Observers are identified by observerID when one
// is given and by function pointer otherwise. The returned disposable
// disconnects the observer.
func (s *Signal) Connect(observer Observer, flags ConnectFlags, observerID ...any) (disposable.Disposable, error) {
	id := resolveID(observer, observerID)
	err := s.dispatcher.Connect(&binding{id: id, observer: observer}, flags, true)
	if errors.Is(err, ErrAlreadyConnected) {
		// Nothing was connected, so there is nothing for the handle to release.
		return disposable.NewDisposable(nil), err
	}
	return disposable.NewDisposable(func() {
		_ = s.Disconnect(observer, id)
	}), err
}

func (s *Signal) Disconnect(observer Observer, observerID ...any) error {
	return s.dispatcher.Disconnect(&binding{id: resolveID(observer, observerID)})
}

func (s *Signal) IsConnected(observer Observer, observerID ...any) bool {
	return s.dispatcher.IsConnected(&binding{id: resolveID(observer, observerID)})
}

func (s *Signal) DisconnectAll() error {
	return s.dispatcher.DisconnectAll()
}

func (s *Signal) Emit(args ...any) error {
	return s.dispatcher.Emit(args)
}

// Await returns a deferred resolved with the arguments of the next emission.
// It is rejected with ErrAwaitCancelled if the connection is removed first.
func (s *Signal) Await() *deferred.DeferredImp[[]any] {
	a := &awaiter{result: deferred.New[[]any]()}
	if err := s.dispatcher.Connect(a, Oneshot, false); err != nil {
		a.result.Reject(err)
	}
	return a.result
}

func resolveID(observer Observer, observerID []any) any {
	if len(observerID) > 0 {
		return observerID[0]
	}
	return makeID(observer)
}

func makeID(observer Observer) uintptr {
	return reflect.ValueOf(observer).Pointer()
}

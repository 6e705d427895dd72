package signals

import (
	"github.com/hashicorp/go-multierror"

	"github.com/krew-solutions/ascetic-signals-go/asceticsig/disposable"
)

// CompositeSignal fans connect, disconnect and emit out to several signals.
type CompositeSignal struct {
	delegates []SignalField
}

func NewCompositeSignal(delegates ...SignalField) *CompositeSignal {
	return &CompositeSignal{delegates: delegates}
}

func (s *CompositeSignal) Connect(observer Observer, flags ConnectFlags, observerID ...any) (disposable.Disposable, error) {
	var result error
	disposables := make([]disposable.Disposable, 0, len(s.delegates))
	for _, delegate := range s.delegates {
		d, err := delegate.Connect(observer, flags, observerID...)
		if err != nil {
			result = multierror.Append(result, err)
		}
		disposables = append(disposables, d)
	}
	return disposable.NewCompositeDisposable(disposables...), result
}

func (s *CompositeSignal) Disconnect(observer Observer, observerID ...any) error {
	var result error
	for _, delegate := range s.delegates {
		if err := delegate.Disconnect(observer, observerID...); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

func (s *CompositeSignal) DisconnectAll() error {
	var result error
	for _, delegate := range s.delegates {
		if err := delegate.DisconnectAll(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

// Emit emits on every delegate, even when an earlier one fails.
func (s *CompositeSignal) Emit(args ...any) error {
	var result error
	for _, delegate := range s.delegates {
		if err := delegate.Emit(args...); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

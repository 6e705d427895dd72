package signals

import (
	"weak"

	"github.com/krew-solutions/ascetic-signals-go/asceticsig/option"
)

// Owner is the native side of the entity that declares a signal.
type Owner interface {
	// ConnectSignal routes future emissions of name to the dispatcher at fieldIndex.
	ConnectSignal(name string, fieldIndex int) error
	DisconnectSignal(name string) error
	// EmitSignal must route synchronously into the dispatcher's
	// IterateTargets before it returns.
	EmitSignal(name string, args ...any) error
}

// OwnerRef resolves to the owner while it is alive and to Nothing afterwards.
type OwnerRef interface {
	Resolve() option.Option[Owner]
}

// Host gives the native layer access to an entity's dispatchers by field index.
type Host interface {
	SignalDispatcher(fieldIndex int) (*Dispatcher, bool)
}

// ProcessSignal is the native callback entry point: it runs a delivery pass
// on the dispatcher declared at fieldIndex.
func ProcessSignal(host Host, fieldIndex int, args []any) {
	if d, ok := host.SignalDispatcher(fieldIndex); ok {
		d.IterateTargets(args)
	}
}

type weakOwner[T any, P interface {
	*T
	Owner
}] struct {
	ptr weak.Pointer[T]
}

// Weak returns a reference that does not keep owner alive.
func Weak[T any, P interface {
	*T
	Owner
}](owner P) OwnerRef {
	return weakOwner[T, P]{ptr: weak.Make((*T)(owner))}
}

func (w weakOwner[T, P]) Resolve() option.Option[Owner] {
	p := w.ptr.Value()
	if p == nil {
		return option.Nothing[Owner]()
	}
	return option.Some[Owner](P(p))
}

type strongOwner struct {
	owner Owner
}

// Strong returns a reference that always resolves to owner. Meant for owners
// whose lifetime is managed elsewhere, such as package-level singletons.
func Strong(owner Owner) OwnerRef {
	return strongOwner{owner: owner}
}

func (s strongOwner) Resolve() option.Option[Owner] {
	if s.owner == nil {
		return option.Nothing[Owner]()
	}
	return option.Some(s.owner)
}

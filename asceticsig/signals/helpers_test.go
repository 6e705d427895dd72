package signals

import (
	"github.com/krew-solutions/ascetic-signals-go/asceticsig/option"
)

type fakeOwner struct {
	dispatchers   []*Dispatcher
	subscribed    map[string]int
	connectCalls  []string
	disconnects   []string
	emitted       []string
	connectErr    error
	disconnectErr error
}

func newFakeOwner() *fakeOwner {
	return &fakeOwner{subscribed: make(map[string]int)}
}

func (o *fakeOwner) ConnectSignal(name string, fieldIndex int) error {
	o.connectCalls = append(o.connectCalls, name)
	if o.connectErr != nil {
		return o.connectErr
	}
	o.subscribed[name] = fieldIndex
	return nil
}

func (o *fakeOwner) DisconnectSignal(name string) error {
	o.disconnects = append(o.disconnects, name)
	if o.disconnectErr != nil {
		return o.disconnectErr
	}
	delete(o.subscribed, name)
	return nil
}

func (o *fakeOwner) EmitSignal(name string, args ...any) error {
	o.emitted = append(o.emitted, name)
	if idx, ok := o.subscribed[name]; ok {
		ProcessSignal(o, idx, args)
	}
	return nil
}

func (o *fakeOwner) SignalDispatcher(fieldIndex int) (*Dispatcher, bool) {
	if fieldIndex < 0 || fieldIndex >= len(o.dispatchers) {
		return nil, false
	}
	return o.dispatchers[fieldIndex], true
}

func (o *fakeOwner) String() string {
	return "FakeOwner"
}

// switchableRef lets a test decide when the owner is gone.
type switchableRef struct {
	owner Owner
	gone  bool
}

func (r *switchableRef) Resolve() option.Option[Owner] {
	if r.gone {
		return option.Nothing[Owner]()
	}
	return option.Some(r.owner)
}

// fixture wires a dispatcher to a fake owner and records deliveries and
// cancellations of plain string callbacks.
type fixture struct {
	owner      *fakeOwner
	ref        *switchableRef
	registry   *DeferredRegistry
	scheduled  []int64
	dispatcher *Dispatcher
	delivered  []string
	args       [][]any
	cancelled  []string
	// hooks run after a callback with the given name is recorded.
	hooks map[string]func(args []any)
}

func newFixture(signalName string) *fixture {
	f := &fixture{
		owner: newFakeOwner(),
		hooks: make(map[string]func(args []any)),
	}
	f.ref = &switchableRef{owner: f.owner}
	f.registry = NewDeferredRegistry(func(id int64) {
		f.scheduled = append(f.scheduled, id)
	})
	f.dispatcher = NewDispatcher(f.ref, signalName, len(f.owner.dispatchers),
		WithRegistry(f.registry),
		WithNames(NewNameTable()),
	)
	f.owner.dispatchers = append(f.owner.dispatchers, f.dispatcher)
	f.dispatcher.ProcessCallback = func(callback any, args []any) {
		name := callback.(string)
		f.delivered = append(f.delivered, name)
		f.args = append(f.args, args)
		if hook, ok := f.hooks[name]; ok {
			hook(args)
		}
	}
	f.dispatcher.CancelCallback = func(callback any) {
		f.cancelled = append(f.cancelled, callback.(string))
	}
	return f
}

func (f *fixture) callbacks() []string {
	var result []string
	for _, c := range f.dispatcher.Connections() {
		result = append(result, c.Callback().(string))
	}
	return result
}

func (f *fixture) emit(args ...any) error {
	return f.dispatcher.Emit(args)
}

package host

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/petermattis/goid"

	"github.com/krew-solutions/ascetic-signals-go/asceticsig/signals"
)

// Object is an in-process native entity. It declares signals, routes native
// emissions to their dispatchers and is confined to one goroutine, like the
// objects of a GUI toolkit are confined to their thread.
type Object struct {
	handle    uuid.UUID
	class     string
	goroutine int64
	fields    []*signals.Signal
	byName    map[string]int
	declared  mapset.Set[string]
	routes    map[string]int
	freed     bool
}

func NewObject(class string) *Object {
	return &Object{
		handle:    uuid.New(),
		class:     class,
		goroutine: goid.Get(),
		byName:    make(map[string]int),
		declared:  mapset.NewThreadUnsafeSet[string](),
		routes:    make(map[string]int),
	}
}

func (o *Object) Handle() uuid.UUID {
	return o.handle
}

func (o *Object) Class() string {
	return o.class
}

func (o *Object) String() string {
	return fmt.Sprintf("%s(%s)", o.class, o.handle)
}

// Adopt binds the object to the calling goroutine.
func (o *Object) Adopt() {
	o.goroutine = goid.Get()
}

// AddSignal declares name and creates its signal field. The field holds the
// object weakly. Declaring a name twice returns the existing field.
func (o *Object) AddSignal(name string, opts ...signals.Option) *signals.Signal {
	if idx, ok := o.byName[name]; ok {
		return o.fields[idx]
	}
	idx := len(o.fields)
	s := signals.NewSignal(signals.Weak(o), name, idx, opts...)
	o.fields = append(o.fields, s)
	o.byName[name] = idx
	o.declared.Add(name)
	return s
}

func (o *Object) Signal(name string) (*signals.Signal, bool) {
	idx, ok := o.byName[name]
	if !ok {
		return nil, false
	}
	return o.fields[idx], true
}

func (o *Object) SignalDispatcher(fieldIndex int) (*signals.Dispatcher, bool) {
	if fieldIndex < 0 || fieldIndex >= len(o.fields) {
		return nil, false
	}
	return o.fields[fieldIndex].Dispatcher(), true
}

// Signals returns the declared signal names.
func (o *Object) Signals() []string {
	return o.declared.ToSlice()
}

// IsRouted reports whether native emissions of name reach a dispatcher.
func (o *Object) IsRouted(name string) bool {
	_, ok := o.routes[name]
	return ok
}

func (o *Object) ConnectSignal(name string, fieldIndex int) error {
	if err := o.check(); err != nil {
		return err
	}
	if !o.declared.Contains(name) {
		return fmt.Errorf("%w: %s.%s", ErrUnknownSignal, o.class, name)
	}
	if _, ok := o.routes[name]; ok {
		return fmt.Errorf("%w: %s.%s", ErrAlreadyConnected, o.class, name)
	}
	if _, ok := o.SignalDispatcher(fieldIndex); !ok {
		return fmt.Errorf("%w: %s field %d", ErrUnknownSignal, o.class, fieldIndex)
	}
	o.routes[name] = fieldIndex
	return nil
}

func (o *Object) DisconnectSignal(name string) error {
	if err := o.check(); err != nil {
		return err
	}
	if _, ok := o.routes[name]; !ok {
		return fmt.Errorf("%w: %s.%s", ErrNotConnected, o.class, name)
	}
	delete(o.routes, name)
	return nil
}

// EmitSignal raises name. Routed emissions are delivered before it returns.
func (o *Object) EmitSignal(name string, args ...any) error {
	if err := o.check(); err != nil {
		return err
	}
	if !o.declared.Contains(name) {
		return fmt.Errorf("%w: %s.%s", ErrUnknownSignal, o.class, name)
	}
	idx, ok := o.routes[name]
	if !ok {
		return nil
	}
	signals.ProcessSignal(o, idx, args)
	return nil
}

// Free disconnects every signal field and drops its pending deferred calls.
// The object rejects native calls afterwards.
func (o *Object) Free() error {
	if o.freed {
		return nil
	}
	if goid.Get() != o.goroutine {
		return ErrForeignGoroutine
	}
	var result error
	for _, s := range o.fields {
		if err := s.DisconnectAll(); err != nil {
			result = multierror.Append(result, err)
		}
		if err := s.Dispatcher().Dispose(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	o.freed = true
	return result
}

func (o *Object) IsFreed() bool {
	return o.freed
}

func (o *Object) check() error {
	if o.freed {
		return ErrObjectFreed
	}
	if goid.Get() != o.goroutine {
		return ErrForeignGoroutine
	}
	return nil
}

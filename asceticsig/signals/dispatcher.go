package signals

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/krew-solutions/ascetic-signals-go/asceticsig/logging"
)

type Option func(*Dispatcher)

// WithRegistry routes deferred deliveries through registry instead of the
// process-wide one.
func WithRegistry(registry *DeferredRegistry) Option {
	return func(d *Dispatcher) {
		d.registry = registry
	}
}

// WithNames interns the signal name in table instead of the process-wide one.
func WithNames(table *NameTable) Option {
	return func(d *Dispatcher) {
		d.names = table
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = &logger
	}
}

// Dispatcher manages the connections of one named signal on one owner.
//
// A dispatcher is not safe for concurrent use. Callbacks invoked during a
// delivery pass may call back into the same dispatcher: removals requested
// while a pass is running are recorded as tombstones and applied when the
// outermost pass ends.
type Dispatcher struct {
	// ProcessCallback invokes a subscriber. Deferred calls are fired through it as well.
	ProcessCallback func(callback any, args []any)
	// CancelCallback is called exactly once for every connection that is physically removed.
	CancelCallback func(callback any)

	nameIndex  int
	fieldIndex int
	owner      OwnerRef
	names      *NameTable
	registry   *DeferredRegistry
	logger     *zerolog.Logger

	internalConnected   bool
	processingLevel     uint
	disconnectionQueued bool
	connections         []*Connection
}

func NewDispatcher(owner OwnerRef, signalName string, fieldIndex int, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		ProcessCallback: invokeCallback,
		CancelCallback:  cancelCallback,
		fieldIndex:      fieldIndex,
		owner:           owner,
		names:           names,
		registry:        defaultRegistry,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.nameIndex = d.names.Intern(signalName)
	return d
}

func (d *Dispatcher) SignalName() string {
	return d.names.Name(d.nameIndex)
}

func (d *Dispatcher) FieldIndex() int {
	return d.fieldIndex
}

// InternalConnected reports whether the dispatcher is subscribed to its owner's native signal.
func (d *Dispatcher) InternalConnected() bool {
	return d.internalConnected
}

func (d *Dispatcher) ProcessingLevel() uint {
	return d.processingLevel
}

// Connections returns the active connections in delivery order.
func (d *Dispatcher) Connections() []*Connection {
	result := make([]*Connection, 0, len(d.connections))
	for _, c := range d.connections {
		if !c.processed {
			result = append(result, c)
		}
	}
	return result
}

// Len returns the number of stored connections, tombstones included.
func (d *Dispatcher) Len() int {
	return len(d.connections)
}

func (d *Dispatcher) IsConnected(callback any) bool {
	return d.findActive(callback) >= 0
}

// Connect subscribes callback. When checkDuplicates is false the connection is
// appended unconditionally; callers use it for callbacks that are unique by
// construction.
func (d *Dispatcher) Connect(callback any, flags ConnectFlags, checkDuplicates bool) error {
	// The connection is recorded even if the native subscription fails; the
	// next Connect tries to subscribe again.
	nativeErr := d.connectInternal()
	if nativeErr != nil {
		d.log().Error().Err(nativeErr).Str("signal", d.SignalName()).Msg("native connect failed")
	}
	if err := d.addConnection(callback, flags, checkDuplicates); err != nil {
		if nativeErr != nil {
			return multierror.Append(nativeErr, err)
		}
		return err
	}
	return nativeErr
}

func (d *Dispatcher) addConnection(callback any, flags ConnectFlags, checkDuplicates bool) error {
	if !checkDuplicates {
		d.connections = append(d.connections, newConnection(callback, flags))
		return nil
	}

	idx := d.findActive(callback)
	if idx < 0 {
		d.connections = append(d.connections, newConnection(callback, flags))
		return nil
	}

	existing := d.connections[idx]
	if existing.ReferenceCounted() || flags.Has(ReferenceCounted) {
		existing.reference()
		return nil
	}

	err := &DuplicateConnectionError{
		Signal:   d.SignalName(),
		Callback: DescribeCallback(callback),
	}
	if owner, ok := d.owner.Resolve().Get(); ok {
		err.Owner = fmt.Sprintf("%v", owner)
	} else {
		err.OwnerGone = true
	}
	d.log().Error().Err(err).Str("signal", err.Signal).Msg("duplicate connection")
	return err
}

// Disconnect removes the first active connection of callback. A reference
// counted connection is only removed once its last reference is released.
func (d *Dispatcher) Disconnect(callback any) error {
	idx := d.findActive(callback)
	if idx < 0 {
		return nil
	}
	c := d.connections[idx]
	if c.ReferenceCounted() && !c.unreference() {
		return nil
	}
	if d.processingLevel > 0 {
		c.processed = true
		d.disconnectionQueued = true
		return nil
	}

	d.connections = append(d.connections[:idx], d.connections[idx+1:]...)
	d.CancelCallback(c.callback)
	if len(d.connections) == 0 {
		return d.disconnectInternal()
	}
	return nil
}

// DisconnectAll removes every connection regardless of reference counts.
func (d *Dispatcher) DisconnectAll() error {
	if d.processingLevel > 0 {
		for _, c := range d.connections {
			c.processed = true
		}
		d.disconnectionQueued = true
		return nil
	}

	connections := d.connections
	d.connections = nil
	for _, c := range connections {
		d.CancelCallback(c.callback)
	}
	return d.disconnectInternal()
}

// IterateTargets runs one delivery pass with args. Connections added while the
// pass runs are first delivered to by the next emission.
func (d *Dispatcher) IterateTargets(args []any) {
	d.processingLevel++
	// Runs on panic too, so a recovered caller leaves the dispatcher at rest.
	defer d.endPass()
	bound := len(d.connections)

	for i := 0; i < bound; i++ {
		c := d.connections[i]
		if c.processed {
			continue
		}
		if c.Oneshot() {
			c.processed = true
			d.disconnectionQueued = true
		}
		if c.Deferred() {
			d.registry.Register(d, c.callback, args)
		} else {
			d.ProcessCallback(c.callback, args)
		}
	}
}

func (d *Dispatcher) endPass() {
	d.processingLevel--
	if d.processingLevel == 0 && d.disconnectionQueued {
		d.sweep()
	}
	if len(d.connections) == 0 {
		if err := d.disconnectInternal(); err != nil {
			d.log().Warn().Err(err).Str("signal", d.SignalName()).Msg("native disconnect failed")
		}
	}
}

// Emit asks the owner to raise the signal. A gone owner cannot emit, so this
// is a no-op in that case.
func (d *Dispatcher) Emit(args []any) error {
	owner, ok := d.owner.Resolve().Get()
	if !ok {
		d.log().Debug().Str("signal", d.SignalName()).Msg("skipping emit, owner is gone")
		return nil
	}
	return owner.EmitSignal(d.SignalName(), args...)
}

// Dispose tears down the native subscription and drops pending deferred calls.
func (d *Dispatcher) Dispose() error {
	if n := d.registry.Drop(d); n > 0 {
		d.log().Debug().Int("dropped", n).Str("signal", d.SignalName()).Msg("dropped pending deferred calls")
	}
	return d.disconnectInternal()
}

func (d *Dispatcher) invoke(callback any, args []any) {
	d.ProcessCallback(callback, args)
}

func (d *Dispatcher) sweep() {
	kept := d.connections[:0]
	var removed []*Connection
	for _, c := range d.connections {
		if c.processed {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(d.connections); i++ {
		d.connections[i] = nil
	}
	d.connections = kept
	d.disconnectionQueued = false

	for _, c := range removed {
		d.CancelCallback(c.callback)
	}
}

func (d *Dispatcher) findActive(callback any) int {
	for i, c := range d.connections {
		if !c.processed && SameCallback(c.callback, callback) {
			return i
		}
	}
	return -1
}

func (d *Dispatcher) connectInternal() error {
	if d.internalConnected {
		return nil
	}
	owner, ok := d.owner.Resolve().Get()
	if !ok {
		return nil
	}
	if err := owner.ConnectSignal(d.SignalName(), d.fieldIndex); err != nil {
		return errors.Wrapf(err, "unable to connect signal '%s'", d.SignalName())
	}
	d.internalConnected = true
	return nil
}

func (d *Dispatcher) disconnectInternal() error {
	if !d.internalConnected {
		return nil
	}
	owner, ok := d.owner.Resolve().Get()
	if !ok {
		d.internalConnected = false
		return nil
	}
	d.internalConnected = false
	if err := owner.DisconnectSignal(d.SignalName()); err != nil {
		return errors.Wrapf(err, "unable to disconnect signal '%s'", d.SignalName())
	}
	return nil
}

func (d *Dispatcher) log() *zerolog.Logger {
	if d.logger == nil {
		l := logging.Component("dispatcher")
		d.logger = &l
	}
	return d.logger
}

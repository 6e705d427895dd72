package signals

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog"

	"github.com/krew-solutions/ascetic-signals-go/asceticsig/logging"
)

// ScheduleFunc asks the host scheduler to call FireDeferred(id) later,
// exactly once, or never if the process tears down first.
type ScheduleFunc func(id int64)

type deferredCall struct {
	dispatcher *Dispatcher
	callback   any
	args       []any
}

// DeferredRegistry bridges deferred deliveries to a later, externally
// triggered firing. Ids increase monotonically and are never reused.
type DeferredRegistry struct {
	mu       sync.Mutex
	lastID   int64
	calls    map[int64]deferredCall
	pending  map[*Dispatcher]mapset.Set[int64]
	schedule ScheduleFunc
	logger   *zerolog.Logger
}

func NewDeferredRegistry(schedule ScheduleFunc) *DeferredRegistry {
	return &DeferredRegistry{
		calls:    make(map[int64]deferredCall),
		pending:  make(map[*Dispatcher]mapset.Set[int64]),
		schedule: schedule,
	}
}

var defaultRegistry = NewDeferredRegistry(nil)

// DefaultRegistry returns the process-wide registry used by dispatchers
// created without WithRegistry.
func DefaultRegistry() *DeferredRegistry {
	return defaultRegistry
}

// SetDeferredScheduler installs the scheduling primitive of the default registry.
func SetDeferredScheduler(schedule ScheduleFunc) {
	defaultRegistry.SetScheduler(schedule)
}

// FireDeferred fires a pending call of the default registry.
func FireDeferred(id int64) bool {
	return defaultRegistry.Fire(id)
}

func (r *DeferredRegistry) SetScheduler(schedule ScheduleFunc) {
	r.mu.Lock()
	r.schedule = schedule
	r.mu.Unlock()
}

func (r *DeferredRegistry) SetLogger(logger zerolog.Logger) {
	r.mu.Lock()
	r.logger = &logger
	r.mu.Unlock()
}

// Register stores a pending call and hands its id to the scheduler. Without a
// scheduler the call stays pending until it is fired by id or its dispatcher
// is dropped; installing a scheduler later does not pick up the backlog.
func (r *DeferredRegistry) Register(dispatcher *Dispatcher, callback any, args []any) int64 {
	r.mu.Lock()
	id := r.lastID
	r.lastID++
	r.calls[id] = deferredCall{dispatcher: dispatcher, callback: callback, args: args}
	ids, ok := r.pending[dispatcher]
	if !ok {
		ids = mapset.NewThreadUnsafeSet[int64]()
		r.pending[dispatcher] = ids
	}
	ids.Add(id)
	schedule := r.schedule
	logger := r.log()
	r.mu.Unlock()

	if schedule == nil {
		logger.Warn().Int64("id", id).Msg("deferred call registered without a scheduler")
		return id
	}
	schedule(id)
	return id
}

// Fire runs the call registered under id. Unknown ids are ignored: the call
// was already fired or its dispatcher was torn down.
func (r *DeferredRegistry) Fire(id int64) bool {
	r.mu.Lock()
	call, ok := r.calls[id]
	if ok {
		delete(r.calls, id)
		r.forget(call.dispatcher, id)
	}
	logger := r.log()
	r.mu.Unlock()

	if !ok {
		logger.Debug().Int64("id", id).Msg("ignoring unknown deferred call")
		return false
	}
	call.dispatcher.invoke(call.callback, call.args)
	return true
}

// Drop discards every pending call of dispatcher and returns how many there were.
func (r *DeferredRegistry) Drop(dispatcher *Dispatcher) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids, ok := r.pending[dispatcher]
	if !ok {
		return 0
	}
	delete(r.pending, dispatcher)
	for _, id := range ids.ToSlice() {
		delete(r.calls, id)
	}
	return ids.Cardinality()
}

// Pending returns the number of calls waiting to be fired.
func (r *DeferredRegistry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *DeferredRegistry) forget(dispatcher *Dispatcher, id int64) {
	ids, ok := r.pending[dispatcher]
	if !ok {
		return
	}
	ids.Remove(id)
	if ids.Cardinality() == 0 {
		delete(r.pending, dispatcher)
	}
}

func (r *DeferredRegistry) log() zerolog.Logger {
	if r.logger != nil {
		return *r.logger
	}
	return logging.Component("deferred_registry")
}

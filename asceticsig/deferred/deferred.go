package deferred

import "github.com/hashicorp/go-multierror"

type state int

const (
	pending state = iota
	resolved
	rejected
)

// Noop is a pass-through handler for the branch a caller does not care about.
func Noop[T, R any](_ T) (R, error) {
	var zero R
	return zero, nil
}

type settler interface {
	settleAny(v any, err error)
	OccurredErr() error
}

type reaction[T any] struct {
	onSuccess func(T) (any, error)
	onError   func(error) (any, error)
	next      settler
}

// DeferredImp is a value that becomes available later, for example the arguments
// of the next emission of a signal. It settles at most once: the first Resolve or
// Reject wins and later calls are ignored.
type DeferredImp[T any] struct {
	state       state
	value       T
	err         error
	occurredErr error
	reactions   []reaction[T]
}

func New[T any]() *DeferredImp[T] {
	return &DeferredImp[T]{}
}

func (d *DeferredImp[T]) Resolve(value T) {
	if d.state != pending {
		return
	}
	d.value = value
	d.state = resolved
	d.flush()
}

func (d *DeferredImp[T]) Reject(err error) {
	if d.state != pending {
		return
	}
	d.err = err
	d.state = rejected
	d.flush()
}

func (d *DeferredImp[T]) IsSettled() bool {
	return d.state != pending
}

func (d *DeferredImp[T]) IsResolved() bool {
	return d.state == resolved
}

func (d *DeferredImp[T]) IsRejected() bool {
	return d.state == rejected
}

// Result returns the settled value or rejection. Both are zero while pending.
func (d *DeferredImp[T]) Result() (T, error) {
	return d.value, d.err
}

func (d *DeferredImp[T]) settleAny(v any, err error) {
	if err != nil {
		d.Reject(err)
		return
	}
	var t T
	if v != nil {
		t = v.(T)
	}
	d.Resolve(t)
}

func (d *DeferredImp[T]) flush() {
	reactions := d.reactions
	d.reactions = nil
	for _, r := range reactions {
		d.react(r)
	}
}

func (d *DeferredImp[T]) react(r reaction[T]) {
	var (
		result any
		err    error
	)
	if d.state == resolved {
		result, err = r.onSuccess(d.value)
	} else {
		result, err = r.onError(d.err)
	}
	if err != nil {
		d.occurredErr = multierror.Append(d.occurredErr, err)
	}
	r.next.settleAny(result, err)
	// Keep settled reactions around so OccurredErr can walk the chain.
	d.reactions = append(d.reactions, r)
}

func (d *DeferredImp[T]) subscribe(r reaction[T]) {
	if d.state == pending {
		d.reactions = append(d.reactions, r)
		return
	}
	d.react(r)
}

func (d *DeferredImp[T]) Then(onSuccess func(T) (any, error), onError func(error) (any, error)) Deferred[any] {
	next := &DeferredImp[any]{}
	d.subscribe(reaction[T]{onSuccess: onSuccess, onError: onError, next: next})
	return next
}

// Then chains typed handlers. A handler returning an error rejects the next
// deferred; returning a value resolves it, including from onError (recovery).
func Then[T, R any](d *DeferredImp[T], onSuccess func(T) (R, error), onError func(error) (R, error)) *DeferredImp[R] {
	next := &DeferredImp[R]{}
	d.subscribe(reaction[T]{
		onSuccess: func(v T) (any, error) { return onSuccess(v) },
		onError:   func(err error) (any, error) { return onError(err) },
		next:      next,
	})
	return next
}

// OccurredErr collects handler errors from this deferred and everything chained after it.
func (d *DeferredImp[T]) OccurredErr() error {
	err := d.occurredErr
	if d.state == pending {
		return err
	}
	for _, r := range d.reactions {
		if nested := r.next.OccurredErr(); nested != nil {
			err = multierror.Append(err, nested)
		}
	}
	return err
}

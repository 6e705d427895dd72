package disposable

// Disposable releases whatever it was handed out for, e.g. a signal connection.
type Disposable interface {
	Dispose()
}

type DisposableImp struct {
	callback func()
	disposed bool
}

// NewDisposable wraps callback so that it runs on the first Dispose only.
func NewDisposable(callback func()) *DisposableImp {
	return &DisposableImp{callback: callback}
}

func (d *DisposableImp) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	if d.callback != nil {
		d.callback()
	}
}

func (d *DisposableImp) IsDisposed() bool {
	return d.disposed
}

type CompositeDisposable struct {
	delegates []Disposable
}

func NewCompositeDisposable(delegates ...Disposable) *CompositeDisposable {
	return &CompositeDisposable{delegates: delegates}
}

func (c *CompositeDisposable) Add(delegates ...Disposable) {
	c.delegates = append(c.delegates, delegates...)
}

// Dispose releases delegates in reverse order of registration.
func (c *CompositeDisposable) Dispose() {
	delegates := c.delegates
	c.delegates = nil
	for i := len(delegates) - 1; i >= 0; i-- {
		delegates[i].Dispose()
	}
}

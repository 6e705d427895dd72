package signals

import (
	"github.com/krew-solutions/ascetic-signals-go/asceticsig/deferred"
)

// awaiter is a oneshot connection bridging an emission to a deferred value.
// Every awaiter is unique, so it is connected without duplicate checks.
type awaiter struct {
	result *deferred.DeferredImp[[]any]
}

func (a *awaiter) Invoke(args []any) {
	a.result.Resolve(args)
}

func (a *awaiter) Cancel() {
	a.result.Reject(ErrAwaitCancelled)
}

func (a *awaiter) String() string {
	return "awaiter"
}

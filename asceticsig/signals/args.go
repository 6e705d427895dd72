package signals

import (
	"github.com/krew-solutions/ascetic-signals-go/asceticsig/option"
)

// FetchArg returns args[idx] as T, or Nothing when the argument is missing,
// nil or of another type.
func FetchArg[T any](args []any, idx int) option.Option[T] {
	if idx < 0 || idx >= len(args) || args[idx] == nil {
		return option.Nothing[T]()
	}
	v, ok := args[idx].(T)
	if !ok {
		return option.Nothing[T]()
	}
	return option.Some(v)
}

// FetchValue is FetchArg falling back to the zero value of T.
func FetchValue[T any](args []any, idx int) T {
	var zero T
	return FetchArg[T](args, idx).UnwrapOr(zero)
}

package signals

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// Keyed callbacks are identified by their key instead of by value.
// The key must be comparable.
type Keyed interface {
	CallbackKey() any
}

// Invoker is a callback that knows how to run itself.
type Invoker interface {
	Invoke(args []any)
}

// Canceler is notified when its connection is physically removed.
type Canceler interface {
	Cancel()
}

// SameCallback reports whether a and b identify the same subscriber.
// Functions are equal when they share type and code pointer, so two
// closures created by the same literal are considered the same callback.
func SameCallback(a, b any) bool {
	if ka, ok := a.(Keyed); ok {
		kb, ok := b.(Keyed)
		return ok && sameValue(ka.CallbackKey(), kb.CallbackKey())
	}
	if _, ok := b.(Keyed); ok {
		return false
	}
	return sameValue(a, b)
}

func sameValue(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return !va.IsValid() && !vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}
	if va.Kind() == reflect.Func {
		return va.Pointer() == vb.Pointer()
	}
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return va.Equal(vb)
}

// DescribeCallback renders a callback for diagnostics.
func DescribeCallback(callback any) string {
	switch cb := callback.(type) {
	case nil:
		return "<nil>"
	case fmt.Stringer:
		return cb.String()
	}
	v := reflect.ValueOf(callback)
	if v.Kind() == reflect.Func {
		if fn := runtime.FuncForPC(v.Pointer()); fn != nil {
			return funcName(fn.Name())
		}
	}
	return fmt.Sprintf("%v", callback)
}

// funcName trims the package path and the method value suffix from a symbol.
func funcName(symbol string) string {
	symbol = strings.TrimSuffix(symbol, "-fm")
	if i := strings.LastIndex(symbol, "/"); i >= 0 {
		symbol = symbol[i+1:]
	}
	return symbol
}

func invokeCallback(callback any, args []any) {
	switch cb := callback.(type) {
	case Invoker:
		cb.Invoke(args)
	case func([]any):
		cb(args)
	case func(...any):
		cb(args...)
	case func():
		cb()
	}
}

func cancelCallback(callback any) {
	if cb, ok := callback.(Canceler); ok {
		cb.Cancel()
	}
}

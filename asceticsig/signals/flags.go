package signals

import "strings"

type ConnectFlags uint8

const (
	// Deferred connections are delivered through the deferred call registry
	// instead of synchronously.
	Deferred ConnectFlags = 1 << iota
	// Oneshot connections are removed after their first delivery.
	Oneshot
	// ReferenceCounted connections coalesce repeated connects of the same
	// callback; each connect needs a matching disconnect.
	ReferenceCounted
)

func (f ConnectFlags) Has(flag ConnectFlags) bool {
	return f&flag != 0
}

func (f ConnectFlags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	if f.Has(Deferred) {
		parts = append(parts, "deferred")
	}
	if f.Has(Oneshot) {
		parts = append(parts, "oneshot")
	}
	if f.Has(ReferenceCounted) {
		parts = append(parts, "reference_counted")
	}
	return strings.Join(parts, "|")
}

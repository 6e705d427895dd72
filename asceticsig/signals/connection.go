package signals

// Connection is one subscription of a callback to a signal.
type Connection struct {
	callback any
	flags    ConnectFlags
	// processed marks a connection that was logically removed while a
	// delivery pass was running. It is swept once the outermost pass ends.
	processed  bool
	references int
}

func newConnection(callback any, flags ConnectFlags) *Connection {
	return &Connection{
		callback:   callback,
		flags:      flags,
		references: 1,
	}
}

func (c *Connection) reference() {
	c.references++
	c.flags |= ReferenceCounted
}

// unreference reports whether the last reference was released.
func (c *Connection) unreference() bool {
	c.references--
	return c.references <= 0
}

func (c *Connection) Callback() any {
	return c.callback
}

func (c *Connection) Flags() ConnectFlags {
	return c.flags
}

func (c *Connection) References() int {
	return c.references
}

func (c *Connection) Processed() bool {
	return c.processed
}

func (c *Connection) Deferred() bool {
	return c.flags.Has(Deferred)
}

func (c *Connection) Oneshot() bool {
	return c.flags.Has(Oneshot)
}

func (c *Connection) ReferenceCounted() bool {
	return c.flags.Has(ReferenceCounted)
}

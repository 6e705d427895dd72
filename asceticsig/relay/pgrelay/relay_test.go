package pgrelay

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu            sync.Mutex
	executed      []string
	args          [][]any
	execErr       error
	notifications chan *pgconn.Notification
	waitErr       error
}

func newFakeConn() *fakeConn {
	return &fakeConn{notifications: make(chan *pgconn.Notification, 8)}
}

func (c *fakeConn) Exec(_ context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.executed = append(c.executed, sql)
	c.args = append(c.args, arguments)
	return pgconn.NewCommandTag("OK"), c.execErr
}

func (c *fakeConn) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case n, ok := <-c.notifications:
		if !ok {
			return nil, c.waitErr
		}
		return n, nil
	}
}

func (c *fakeConn) statements() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.executed...)
}

type queuePoster struct {
	posted chan func()
}

// Post drops fn when the queue is full so a stalled test cannot block the relay.
func (p *queuePoster) Post(fn func()) {
	select {
	case p.posted <- fn:
	default:
	}
}

type recordingEmitter struct {
	emitted [][]any
	err     error
}

func (e *recordingEmitter) Emit(args ...any) error {
	e.emitted = append(e.emitted, args)
	return e.err
}

func TestRelay_Bind(t *testing.T) {
	r := NewRelay(newFakeConn(), &queuePoster{}, zerolog.Nop())

	require.NoError(t, r.Bind("orders", &recordingEmitter{}))
	require.NoError(t, r.Bind("Mixed Case", &recordingEmitter{}))

	assert.ErrorIs(t, r.Bind("orders", &recordingEmitter{}), ErrChannelBound)
	assert.ErrorIs(t, r.Bind("", &recordingEmitter{}), ErrEmptyChannelName)
	assert.Equal(t, []string{"orders", "Mixed Case"}, r.Channels())
}

func TestRelay_RunWithoutBindings(t *testing.T) {
	r := NewRelay(newFakeConn(), &queuePoster{}, zerolog.Nop())

	assert.ErrorIs(t, r.Run(context.Background()), ErrNoBindings)
}

func TestRelay_Run(t *testing.T) {
	conn := newFakeConn()
	poster := &queuePoster{posted: make(chan func(), 8)}
	r := NewRelay(conn, poster, zerolog.Nop())
	orders := &recordingEmitter{}
	require.NoError(t, r.Bind("orders", orders))
	require.NoError(t, r.Bind("Mixed Case", &recordingEmitter{}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	conn.notifications <- &pgconn.Notification{PID: 42, Channel: "unknown", Payload: "x"}
	conn.notifications <- &pgconn.Notification{PID: 42, Channel: "orders", Payload: "created"}

	// Only the bound channel reaches the poster; emission happens on this goroutine.
	fn := <-poster.posted
	assert.Empty(t, orders.emitted)
	fn()

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, [][]any{{"created", uint32(42), "orders"}}, orders.emitted)
	assert.Equal(t, []string{`LISTEN "orders"`, `LISTEN "Mixed Case"`}, conn.statements())
}

func TestRelay_RunFailures(t *testing.T) {
	t.Run("listen failure", func(t *testing.T) {
		conn := newFakeConn()
		conn.execErr = errors.New("permission denied")
		r := NewRelay(conn, &queuePoster{}, zerolog.Nop())
		require.NoError(t, r.Bind("orders", &recordingEmitter{}))

		err := r.Run(context.Background())

		assert.ErrorIs(t, err, conn.execErr)
		assert.Contains(t, err.Error(), "unable to listen on 'orders'")
	})

	t.Run("connection lost", func(t *testing.T) {
		conn := newFakeConn()
		conn.waitErr = errors.New("conn closed")
		close(conn.notifications)
		r := NewRelay(conn, &queuePoster{}, zerolog.Nop())
		require.NoError(t, r.Bind("orders", &recordingEmitter{}))

		assert.ErrorIs(t, r.Run(context.Background()), conn.waitErr)
	})
}

func TestNotify(t *testing.T) {
	conn := newFakeConn()

	require.NoError(t, Notify(context.Background(), conn, "orders", "created"))
	assert.ErrorIs(t, Notify(context.Background(), conn, "", "created"), ErrEmptyChannelName)

	assert.Equal(t, []string{"SELECT pg_notify($1, $2)"}, conn.statements())
	assert.Equal(t, []any{"orders", "created"}, conn.args[0])
}

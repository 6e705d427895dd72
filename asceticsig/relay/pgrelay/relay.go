package pgrelay

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/krew-solutions/ascetic-signals-go/asceticsig/signals"
)

// Execer is satisfied by *pgx.Conn and *pgxpool.Pool.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Conn is a dedicated listening connection, satisfied by *pgx.Conn.
type Conn interface {
	Execer
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
}

// Poster hands a function over to the goroutine that owns the signal
// emitters, e.g. a scheduler.Loop.
type Poster interface {
	Post(fn func())
}

func Dial(ctx context.Context, dsn string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to PostgreSQL")
	}
	return conn, nil
}

// Relay turns PostgreSQL notifications into signal emissions. Each emission
// carries the payload, the sender's backend PID and the channel name.
type Relay struct {
	conn     Conn
	poster   Poster
	bindings map[string]signals.Emitter
	order    []string
	logger   zerolog.Logger
}

func NewRelay(conn Conn, poster Poster, logger zerolog.Logger) *Relay {
	return &Relay{
		conn:     conn,
		poster:   poster,
		bindings: make(map[string]signals.Emitter),
		logger:   logger.With().Str("component", "pgrelay").Logger(),
	}
}

// Bind routes notifications on channel to emitter. Must be called before Run.
func (r *Relay) Bind(channel string, emitter signals.Emitter) error {
	if channel == "" {
		return ErrEmptyChannelName
	}
	if _, ok := r.bindings[channel]; ok {
		return fmt.Errorf("%w: %s", ErrChannelBound, channel)
	}
	r.bindings[channel] = emitter
	r.order = append(r.order, channel)
	return nil
}

// Channels returns the bound channels in binding order.
func (r *Relay) Channels() []string {
	return append([]string(nil), r.order...)
}

// Run listens on every bound channel and relays notifications until ctx is
// done or the connection fails.
func (r *Relay) Run(ctx context.Context) error {
	if len(r.order) == 0 {
		return ErrNoBindings
	}
	for _, channel := range r.order {
		if _, err := r.conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
			return errors.Wrapf(err, "unable to listen on '%s'", channel)
		}
		r.logger.Info().Str("channel", channel).Msg("listening")
	}

	for {
		n, err := r.conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "unable to wait for notification")
		}
		r.dispatch(n)
	}
}

func (r *Relay) dispatch(n *pgconn.Notification) {
	emitter, ok := r.bindings[n.Channel]
	if !ok {
		r.logger.Warn().Str("channel", n.Channel).Msg("notification on unbound channel")
		return
	}
	r.logger.Debug().Str("channel", n.Channel).Uint32("pid", n.PID).Msg("notification")
	payload, pid, channel := n.Payload, n.PID, n.Channel
	r.poster.Post(func() {
		if err := emitter.Emit(payload, pid, channel); err != nil {
			r.logger.Error().Err(err).Str("channel", channel).Msg("emit failed")
		}
	})
}

// Notify sends payload on channel.
func Notify(ctx context.Context, conn Execer, channel, payload string) error {
	if channel == "" {
		return ErrEmptyChannelName
	}
	if _, err := conn.Exec(ctx, "SELECT pg_notify($1, $2)", channel, payload); err != nil {
		return errors.Wrapf(err, "unable to notify '%s'", channel)
	}
	return nil
}

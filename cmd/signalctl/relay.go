package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v3"

	"github.com/krew-solutions/ascetic-signals-go/asceticsig/config"
	"github.com/krew-solutions/ascetic-signals-go/asceticsig/host"
	"github.com/krew-solutions/ascetic-signals-go/asceticsig/logging"
	"github.com/krew-solutions/ascetic-signals-go/asceticsig/relay/pgrelay"
	"github.com/krew-solutions/ascetic-signals-go/asceticsig/scheduler"
	"github.com/krew-solutions/ascetic-signals-go/asceticsig/signals"
)

const deferredKey = "deferred"

func relayCommand() *cli.Command {
	return &cli.Command{
		Name:  "relay",
		Usage: "Relay PostgreSQL notifications into signals and log every emission",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     configKey,
				Usage:    "Path to the TOML configuration",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  deferredKey,
				Usage: "Deliver to the logging observers through the loop",
			},
		},
		Action: relay,
	}
}

func relay(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String(configKey))
	if err != nil {
		return err
	}
	logger := cfg.Logger()
	logging.SetLogger(logger)

	registry := signals.DefaultRegistry()
	registry.SetLogger(logging.Component("deferred_registry"))
	loop := scheduler.NewLoop(cfg.Loop.Tick.Duration, logger)
	loop.Bind(registry)

	var flags signals.ConnectFlags
	if cmd.Bool(deferredKey) {
		flags |= signals.Deferred
	}

	obj := host.NewObject("Relay")
	conn, err := pgrelay.Dial(ctx, cfg.Relay.DSN)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	r := pgrelay.NewRelay(conn, loop, logger)
	for _, b := range cfg.Relay.Bindings {
		s := obj.AddSignal(b.Signal)
		name := b.Signal
		_, err := s.Connect(func(args ...any) {
			logger.Info().
				Str("signal", name).
				Str("payload", signals.FetchValue[string](args, 0)).
				Uint32("pid", signals.FetchValue[uint32](args, 1)).
				Str("channel", signals.FetchValue[string](args, 2)).
				Msg("emitted")
		}, flags, "log")
		if err != nil {
			return err
		}
		if err := r.Bind(b.Channel, s); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	relayErr := make(chan error, 1)
	go func() {
		err := r.Run(ctx)
		relayErr <- err
		// A failed relay stops the loop as well.
		stop()
	}()

	var result error
	if err := loop.Run(ctx, registry.Fire); err != nil && !errors.Is(err, context.Canceled) {
		result = multierror.Append(result, err)
	}
	if err := <-relayErr; err != nil && !errors.Is(err, context.Canceled) {
		result = multierror.Append(result, err)
	}
	if err := obj.Free(); err != nil {
		result = multierror.Append(result, err)
	}
	logger.Info().Msg("relay stopped")
	return result
}

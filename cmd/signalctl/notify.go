package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/krew-solutions/ascetic-signals-go/asceticsig/relay/pgrelay"
)

func notifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "notify",
		Usage:     "Send a PostgreSQL notification",
		ArgsUsage: "CHANNEL PAYLOAD",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     dsnKey,
				Usage:    "PostgreSQL connection string",
				Required: true,
			},
		},
		Action: notify,
	}
}

func notify(ctx context.Context, cmd *cli.Command) error {
	logger, err := setupLogging(cmd)
	if err != nil {
		return err
	}
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("expected CHANNEL and PAYLOAD, got %d arguments", cmd.Args().Len())
	}
	channel, payload := cmd.Args().Get(0), cmd.Args().Get(1)

	pool, err := pgxpool.New(ctx, cmd.String(dsnKey))
	if err != nil {
		return errors.Wrap(err, "unable to create connection pool")
	}
	defer pool.Close()

	if err := pgrelay.Notify(ctx, pool, channel, payload); err != nil {
		return err
	}
	logger.Info().Str("channel", channel).Msg("notified")
	return nil
}

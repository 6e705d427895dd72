package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/krew-solutions/ascetic-signals-go/asceticsig/logging"
)

const (
	logLevelKey   = "log-level"
	configKey     = "config"
	iterationsKey = "iterations"
	dsnKey        = "dsn"
)

func main() {
	cmd := &cli.Command{
		Name:  "signalctl",
		Usage: "Drive and measure per-entity signal dispatchers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  logLevelKey,
				Usage: "Log level (trace, debug, info, warn, error, disabled)",
				Value: "info",
			},
		},
		Commands: []*cli.Command{
			benchCommand(),
			relayCommand(),
			notifyCommand(),
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger := logging.Logger()
		logger.Error().Err(err).Msg("signalctl failed")
		os.Exit(1)
	}
}

// setupLogging installs the runtime logger, honouring --log-level and the
// ASCETICSIG_LOG_* environment.
func setupLogging(cmd *cli.Command) (zerolog.Logger, error) {
	logging.ConfigureRuntime()
	level, ok := logging.ParseLevel(cmd.String(logLevelKey))
	if !ok {
		return zerolog.Logger{}, fmt.Errorf("unknown log level %q", cmd.String(logLevelKey))
	}
	logger := logging.Logger().Level(level)
	logging.SetLogger(logger)
	return logger, nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/krew-solutions/ascetic-signals-go/asceticsig/deferred"
	"github.com/krew-solutions/ascetic-signals-go/asceticsig/host"
	"github.com/krew-solutions/ascetic-signals-go/asceticsig/scheduler"
	"github.com/krew-solutions/ascetic-signals-go/asceticsig/signals"
)

var observerCounts = []int{1, 10, 100}

type scenario struct {
	name string
	// run performs one measured operation per iteration.
	run func(observers, iters int, tach *tachymeter.Tachymeter) error
}

var scenarios = []scenario{
	{"emit", benchEmit},
	{"emit deferred + flush", benchDeferred},
	{"connect during emit", benchReentrantConnect},
	{"oneshot churn", benchOneshot},
	{"await", benchAwait},
}

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Measure emission, deferred delivery and reentrant connects",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  iterationsKey,
				Usage: "Measured operations per scenario",
				Value: 1_000,
			},
		},
		Action: bench,
	}
}

func bench(ctx context.Context, cmd *cli.Command) error {
	logger, err := setupLogging(cmd)
	if err != nil {
		return err
	}
	iters := int(cmd.Int(iterationsKey))
	if iters <= 0 {
		return fmt.Errorf("--%s must be positive", iterationsKey)
	}

	tbl := table.NewWriter()
	tbl.SetTitle("Signal dispatch")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "iterations", "avg", "min", "p75", "p99", "max", "ops/s"})

	for _, sc := range scenarios {
		for _, observers := range observerCounts {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})
			if err := sc.run(observers, iters, tach); err != nil {
				return fmt.Errorf("%s: %w", sc.name, err)
			}
			calc := tach.Calc()
			tbl.AppendRow(table.Row{
				fmt.Sprintf("%s: %d observers", sc.name, observers),
				humanize.Comma(int64(iters)),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
				humanize.Comma(int64(calc.Rate.Second)),
			})
			logger.Debug().Str("scenario", sc.name).Int("observers", observers).Msg("done")
		}
	}
	tbl.Render()
	return nil
}

func newBenchSignal(registry *signals.DeferredRegistry) (*host.Object, *signals.Signal) {
	o := host.NewObject("Bench")
	return o, o.AddSignal("changed", signals.WithRegistry(registry))
}

func connectObservers(s *signals.Signal, n int, flags signals.ConnectFlags) error {
	for i := 0; i < n; i++ {
		if _, err := s.Connect(func(...any) {}, flags, i); err != nil {
			return err
		}
	}
	return nil
}

func benchEmit(observers, iters int, tach *tachymeter.Tachymeter) error {
	o, s := newBenchSignal(signals.NewDeferredRegistry(nil))
	defer o.Free()
	if err := connectObservers(s, observers, 0); err != nil {
		return err
	}
	for i := 0; i < iters; i++ {
		start := time.Now()
		if err := s.Emit(i); err != nil {
			return err
		}
		tach.AddTime(time.Since(start))
	}
	return nil
}

func benchDeferred(observers, iters int, tach *tachymeter.Tachymeter) error {
	registry := signals.NewDeferredRegistry(nil)
	loop := scheduler.NewLoop(time.Millisecond, zerolog.Nop())
	loop.Bind(registry)
	o, s := newBenchSignal(registry)
	defer o.Free()
	if err := connectObservers(s, observers, signals.Deferred); err != nil {
		return err
	}
	for i := 0; i < iters; i++ {
		start := time.Now()
		if err := s.Emit(i); err != nil {
			return err
		}
		if fired := loop.Flush(registry.Fire); fired != observers {
			return fmt.Errorf("fired %d of %d deferred calls", fired, observers)
		}
		tach.AddTime(time.Since(start))
	}
	return nil
}

func benchReentrantConnect(observers, iters int, tach *tachymeter.Tachymeter) error {
	o, s := newBenchSignal(signals.NewDeferredRegistry(nil))
	defer o.Free()
	if err := connectObservers(s, observers, 0); err != nil {
		return err
	}
	var connectErr error
	next := observers
	_, err := s.Connect(func(...any) {
		next++
		if _, err := s.Connect(func(...any) {}, signals.Oneshot, next); err != nil {
			connectErr = err
		}
	}, 0, "spawner")
	if err != nil {
		return err
	}
	for i := 0; i < iters; i++ {
		start := time.Now()
		if err := s.Emit(i); err != nil {
			return err
		}
		tach.AddTime(time.Since(start))
		if connectErr != nil {
			return connectErr
		}
	}
	return nil
}

func benchOneshot(observers, iters int, tach *tachymeter.Tachymeter) error {
	o, s := newBenchSignal(signals.NewDeferredRegistry(nil))
	defer o.Free()
	for i := 0; i < iters; i++ {
		start := time.Now()
		if err := connectObservers(s, observers, signals.Oneshot); err != nil {
			return err
		}
		if err := s.Emit(i); err != nil {
			return err
		}
		tach.AddTime(time.Since(start))
	}
	return nil
}

// benchAwait measures awaiting the next emission and chaining on its result.
func benchAwait(observers, iters int, tach *tachymeter.Tachymeter) error {
	o, s := newBenchSignal(signals.NewDeferredRegistry(nil))
	defer o.Free()
	if err := connectObservers(s, observers, 0); err != nil {
		return err
	}
	for i := 0; i < iters; i++ {
		start := time.Now()
		awaited := s.Await()
		value := deferred.Then(awaited, func(args []any) (int, error) {
			v, ok := signals.FetchArg[int](args, 0).Get()
			if !ok {
				return 0, fmt.Errorf("emission carried %v", args)
			}
			return v, nil
		}, deferred.Noop[error, int])
		if err := s.Emit(i); err != nil {
			return err
		}
		tach.AddTime(time.Since(start))
		if err := awaited.OccurredErr(); err != nil {
			return err
		}
		if got, _ := value.Result(); got != i {
			return fmt.Errorf("awaited %d, emitted %d", got, i)
		}
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/krew-solutions/ascetic-signals-go/asceticsig/logging"
)

var (
	ErrInvalidTick      = errors.New("config: loop tick must be positive")
	ErrInvalidLogLevel  = errors.New("config: unknown log level")
	ErrMissingDSN       = errors.New("config: relay dsn is required when bindings are declared")
	ErrInvalidBinding   = errors.New("config: relay binding needs a channel and a signal")
	ErrDuplicateChannel = errors.New("config: relay channel bound twice")
	ErrUnknownKeys      = errors.New("config: unknown keys")
)

const DefaultTick = 10 * time.Millisecond

// Duration is a time.Duration written as a string, e.g. "250ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Config struct {
	Log   Log   `toml:"log"`
	Loop  Loop  `toml:"loop"`
	Relay Relay `toml:"relay"`
}

type Log struct {
	Level     string `toml:"level"`
	Timestamp bool   `toml:"timestamp"`
	NoColor   bool   `toml:"no_color"`
}

type Loop struct {
	Tick Duration `toml:"tick"`
}

type Relay struct {
	DSN      string    `toml:"dsn"`
	Bindings []Binding `toml:"bindings"`
}

// Binding relays notifications on Channel to the signal named Signal.
type Binding struct {
	Channel string `toml:"channel"`
	Signal  string `toml:"signal"`
}

func Default() Config {
	return Config{
		Log:  Log{Level: "info", Timestamp: true},
		Loop: Loop{Tick: Duration{DefaultTick}},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, pkgerrors.Wrapf(err, "unable to read config '%s'", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownKeys, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse is Load for in-memory documents.
func Parse(data string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return Config{}, pkgerrors.Wrap(err, "unable to parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Loop.Tick.Duration <= 0 {
		return ErrInvalidTick
	}
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	if len(c.Relay.Bindings) > 0 && c.Relay.DSN == "" {
		return ErrMissingDSN
	}
	seen := make(map[string]struct{}, len(c.Relay.Bindings))
	for i, b := range c.Relay.Bindings {
		if b.Channel == "" || b.Signal == "" {
			return fmt.Errorf("%w: bindings[%d]", ErrInvalidBinding, i)
		}
		if _, ok := seen[b.Channel]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateChannel, b.Channel)
		}
		seen[b.Channel] = struct{}{}
	}
	return nil
}

// LogConfig converts the [log] section for logging.New.
func (c Config) LogConfig() logging.Config {
	level, _ := logging.ParseLevel(c.Log.Level)
	return logging.Config{
		Level:     level,
		Timestamp: c.Log.Timestamp,
		NoColor:   c.Log.NoColor,
	}
}

// Logger builds the process logger described by the [log] section.
func (c Config) Logger() zerolog.Logger {
	return logging.New(c.LogConfig())
}

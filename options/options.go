package options

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
)

const qnetEnvPrefix = "QNET"

// Options defines options for a qnet backend.
type Options struct {
	logger zerolog.Logger

	AppName        string        `env:"QNET_APP_NAME,default=qnet"`
	EPRWaitTimeout time.Duration `env:"QNET_EPR_WAIT_TIMEOUT,default=30s"`
	RandomSeed     int64         `env:"QNET_RANDOM_SEED,default=0"`
	LogLevel       string        `env:"QNET_LOG_LEVEL,default=info"`
	TracerConfig   TracerConfig  `env:",prefix=QNET_TRACER_"`
}

// TracerConfig holds values specific to setting up the tracer. All
// configuration options have a prefix of QNET_TRACER_ specified in the
// parent Options struct.
type TracerConfig struct {
	TracerType  string           `env:"TYPE,default=none"`
	ServiceName string           `env:"SERVICENAME,default=qnet"`
	Probability float64          `env:"PROBABILITY,default=0.5"`
	Collector   *CollectorConfig `env:",prefix=COLLECTOR_,noinit"`
}

// CollectorConfig holds config values specific to the collector tracer
// exporter. All the configuration values here have a prefix of
// QNET_TRACER_COLLECTOR_.
type CollectorConfig struct {
	Endpoint string `env:"ENDPOINT"`
}

// Modifier defines options for a qnet backend.
type Modifier func(*Options)

// NewWithModifiers applies the given modifiers and then locks the
// options in against the environment
func NewWithModifiers(mods ...Modifier) *Options {
	opts := &Options{
		logger: zerolog.Nop(),
	}

	for _, mod := range mods {
		mod(opts)
	}

	opts.finalize()

	return opts
}

// UseLogger sets the logger to be used.
func UseLogger(logger zerolog.Logger) Modifier {
	return func(opts *Options) {
		opts.logger = logger
	}
}

// AppName sets the app name to be used.
func AppName(name string) Modifier {
	return func(opts *Options) {
		opts.AppName = name
	}
}

// EPRWaitTimeout bounds how long blocking EPR calls may wait. A
// negative value disables the bound; zero defers to the environment.
func EPRWaitTimeout(timeout time.Duration) Modifier {
	return func(opts *Options) {
		opts.EPRWaitTimeout = timeout
	}
}

// RandomSeed fixes the measurement stream for deterministic runs. Zero
// seeds from the wall clock.
func RandomSeed(seed int64) Modifier {
	return func(opts *Options) {
		opts.RandomSeed = seed
	}
}

// Logger returns the options' logger
func (o *Options) Logger() zerolog.Logger {
	return o.logger
}

// finalize "locks in" the options by filling any unset option with the
// version from the environment
func (o *Options) finalize() {
	envOpts := Options{}
	if err := envconfig.Process(context.Background(), &envOpts); err != nil {
		o.logger.Err(errors.Wrap(err, "failed to Process environment config")).Msg("ignoring environment")
		return
	}

	// set AppName if it was not passed as a modifier.
	if o.AppName == "" {
		o.AppName = envOpts.AppName
	}

	// set EPRWaitTimeout if it was not passed as a modifier.
	if o.EPRWaitTimeout == 0 {
		o.EPRWaitTimeout = envOpts.EPRWaitTimeout
	}

	// set RandomSeed if it was not passed as a modifier.
	if o.RandomSeed == 0 {
		o.RandomSeed = envOpts.RandomSeed
	}

	if o.LogLevel == "" {
		o.LogLevel = envOpts.LogLevel
	}

	o.TracerConfig = envOpts.TracerConfig
}

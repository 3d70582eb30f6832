package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/entanglab/qnet/backend"
	"github.com/entanglab/qnet/backend/simbackend"
	"github.com/entanglab/qnet/engine/statevec"
	"github.com/entanglab/qnet/foundation/tracing"
	"github.com/entanglab/qnet/options"
	"github.com/entanglab/qnet/protocol"
	"github.com/entanglab/qnet/release"
	"github.com/entanglab/qnet/signaler"
	"github.com/entanglab/qnet/simulation"
)

const (
	appNameFlag  = "app-name"
	timeoutFlag  = "epr-timeout"
	seedFlag     = "seed"
	logLevelFlag = "log-level"

	shutdownBound = time.Second * 5
)

// Run returns the command that loads a topology and drives a full
// teleportation round across every declared link
func Run() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run [topology-path]",
		Short:   "run a simulated quantum network",
		Long:    "runs the hosts and links declared in a TOML topology file against the state-vector engine",
		Version: release.QNetDotVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "./topology.toml"
			if len(args) > 0 {
				path = args[0]
			}

			mods, logLevel, err := optionsFromFlags(cmd.Flags())
			if err != nil {
				return errors.Wrap(err, "failed to optionsFromFlags")
			}

			level, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				return errors.Wrapf(err, "failed to ParseLevel %s", logLevel)
			}

			logger := zerolog.New(os.Stderr).Level(level).With().
				Timestamp().
				Str("qnetVersion", release.QNetDotVersion).
				Logger()

			mods = append(mods, options.UseLogger(logger))

			topo, err := LoadTopology(path)
			if err != nil {
				return errors.Wrap(err, "failed to LoadTopology")
			}

			return run(topo, logger, mods...)
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.Flags().String(appNameFlag, "", "name reported in logs and traces, otherwise QNET_APP_NAME is used")
	cmd.Flags().Duration(timeoutFlag, 0, "bound on blocking EPR waits, otherwise QNET_EPR_WAIT_TIMEOUT is used")
	cmd.Flags().Int64(seedFlag, 0, "fixed seed for the measurement stream, 0 seeds from the clock")
	cmd.Flags().String(logLevelFlag, "info", "log level: trace, debug, info, warn, error")

	return cmd
}

func run(topo *Topology, logger zerolog.Logger, mods ...options.Modifier) error {
	opts := options.NewWithModifiers(mods...)

	traceProvider, err := tracing.SetupTracing(tracing.Config{
		Type:        tracing.CollectorType(opts.TracerConfig.TracerType),
		ServiceName: opts.TracerConfig.ServiceName,
		Probability: opts.TracerConfig.Probability,
		Collector:   collectorConfig(opts),
	}, logger)
	if err != nil {
		return errors.Wrap(err, "failed to SetupTracing")
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownBound)
		defer cancel()

		if err := traceProvider.Shutdown(shutdownCtx); err != nil {
			logger.Err(err).Msg("failed to shut down trace provider")
		}
	}()

	sim, err := simulation.NewShared()
	if err != nil {
		return errors.Wrap(err, "failed to acquire shared simulation context")
	}

	defer simulation.ReleaseShared()

	eng := statevec.New()
	if opts.RandomSeed != 0 {
		eng = statevec.NewWithSeed(opts.RandomSeed)
	}

	sb := simbackend.NewWithContext(sim, eng, mods...)

	if err := sb.Start(context.Background()); err != nil {
		return errors.Wrap(err, "failed to Start backend")
	}

	defer func() {
		if err := sb.Stop(); err != nil {
			logger.Err(err).Msg("failed to Stop backend")
		}
	}()

	for _, h := range topo.Hosts {
		if err := sb.AddHost(backend.NewHost(h.ID)); err != nil {
			return errors.Wrapf(err, "failed to AddHost %s", h.ID)
		}
	}

	sig := signaler.Setup()

	sig.Start(func(ctx context.Context) error {
		return runLinks(ctx, sb, topo, logger)
	})

	return sig.Wait(shutdownBound)
}

// runLinks teleports a freshly rotated qubit across each declared link,
// every link on its own goroutine
func runLinks(ctx context.Context, sb *simbackend.Simulator, topo *Topology, logger zerolog.Logger) error {
	group, ctx := errgroup.WithContext(ctx)

	for i := range topo.Links {
		link := topo.Links[i]

		group.Go(func() error {
			for p := 0; p < link.Pairs; p++ {
				if err := ctx.Err(); err != nil {
					return err
				}

				angle := float64(p+1) * 0.3

				payload, err := sb.CreateQubit(link.Sender)
				if err != nil {
					return errors.Wrap(err, "failed to CreateQubit")
				}

				if err := sb.Rx(payload, angle); err != nil {
					return errors.Wrap(err, "failed to Rx")
				}

				received, err := protocol.Teleport(ctx, sb, payload, link.Sender, link.Receiver)
				if err != nil {
					return errors.Wrap(err, "failed to Teleport")
				}

				bit, err := sb.Measure(received, false)
				if err != nil {
					return errors.Wrap(err, "failed to Measure")
				}

				logger.Info().
					Str("sender", link.Sender).
					Str("receiver", link.Receiver).
					Float64("angle", angle).
					Int("bit", bit).
					Msg("teleported qubit measured")
			}

			return nil
		})
	}

	return group.Wait()
}

func collectorConfig(opts *options.Options) tracing.CollectorConfig {
	if opts.TracerConfig.Collector == nil {
		return tracing.CollectorConfig{}
	}

	return tracing.CollectorConfig{Endpoint: opts.TracerConfig.Collector.Endpoint}
}

func optionsFromFlags(flags *pflag.FlagSet) ([]options.Modifier, string, error) {
	appName, err := flags.GetString(appNameFlag)
	if err != nil {
		return nil, "", errors.Wrap(err, fmt.Sprintf("get string flag '%s' value", appNameFlag))
	}

	timeout, err := flags.GetDuration(timeoutFlag)
	if err != nil {
		return nil, "", errors.Wrap(err, fmt.Sprintf("get duration flag '%s' value", timeoutFlag))
	}

	seed, err := flags.GetInt64(seedFlag)
	if err != nil {
		return nil, "", errors.Wrap(err, fmt.Sprintf("get int64 flag '%s' value", seedFlag))
	}

	logLevel, err := flags.GetString(logLevelFlag)
	if err != nil {
		return nil, "", errors.Wrap(err, fmt.Sprintf("get string flag '%s' value", logLevelFlag))
	}

	mods := []options.Modifier{}

	if appName != "" {
		mods = append(mods, options.AppName(appName))
	}

	if timeout != 0 {
		mods = append(mods, options.EPRWaitTimeout(timeout))
	}

	if seed != 0 {
		mods = append(mods, options.RandomSeed(seed))
	}

	return mods, logLevel, nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/compassx/internal/adapters/driven/simulated"
	"github.com/custodia-labs/compassx/internal/adapters/driven/sink"
	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
	"github.com/custodia-labs/compassx/internal/logger"
)

var (
	watchJSON     bool
	watchDuration time.Duration
	watchTrace    string
	watchFollow   bool
	watchPaced    bool
	watchMotion   simulated.MotionConfig
)

var watchCmd = &cobra.Command{
	Use:   "watch [true|magnetic]",
	Short: "Stream compass headings",
	Long: `Streams headings from the simulated device until interrupted.

The true channel (default) uses the best available source: the fused
orientation service, then the rotation vector sensor corrected for magnetic
declination, then the heading sensor. The magnetic channel only uses the
rotation vector sensor and applies no declination.

Without --trace the device turns at --turn-rate degrees per second. With
--trace, sensor events are replayed from a JSON-lines file; --follow keeps
reading lines appended to it.

On a terminal a single status line is redrawn; otherwise, or with --json,
one JSON object is written per event.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{domain.HeadingTrue.String(), domain.HeadingMagnetic.String()},
	RunE:      runWatch,
}

func init() {
	flags := watchCmd.Flags()
	flags.BoolVar(&watchJSON, "json", false, "write JSON lines even on a terminal")
	flags.DurationVarP(&watchDuration, "duration", "d", 0, "stop after this long (0 = until interrupted)")
	flags.StringVar(&watchTrace, "trace", "", "replay sensor events from a JSON-lines trace file")
	flags.BoolVar(&watchFollow, "follow", false, "keep reading events appended to the trace")
	flags.BoolVar(&watchPaced, "paced", false, "replay the trace at its recorded speed")
	flags.Float64Var(&watchMotion.StartAzimuth, "start", 0, "initial magnetic azimuth in degrees")
	flags.Float64Var(&watchMotion.TurnRate, "turn-rate", 15, "rotation speed in degrees per second")
	flags.Float64Var(&watchMotion.Wobble, "wobble", 0.5, "oscillation amplitude in degrees")
	flags.Float64Var(&watchMotion.HeadingErrorDegrees, "error", 5, "heading error reported by the sensors in degrees")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	kind := domain.HeadingTrue
	if len(args) == 1 {
		kind = domain.HeadingKind(args[0])
	}
	if !kind.IsValid() {
		return fmt.Errorf("unknown heading channel %q (want true or magnetic)", args[0])
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if watchDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, watchDuration)
		defer cancel()
	}

	var replayer *simulated.Replayer
	if watchTrace != "" {
		replayer = simulated.NewReplayer(rt.device, watchPaced)
		if err := applyTraceHeader(replayer, watchTrace); err != nil {
			return err
		}
	}

	out := newWatchSink(cmd)
	status := &statusSink{EventSink: out}

	sub, err := rt.compass.Subscribe(kind, status)
	if err != nil {
		return err
	}
	if sub.State() == domain.SubscriptionDisposed {
		return status.Err()
	}
	logger.Info("watching %s heading via %s", kind, sub.Provider().Description())

	if replayer != nil {
		err = replay(ctx, replayer, watchTrace)
	} else {
		cfg := watchMotion
		cfg.Period = rt.settings.Sensor.SamplingRate.Period()
		cfg.Location = devFlags.fix()
		err = simulated.NewMotion(rt.device, cfg).Run(ctx)
	}

	rt.compass.Detach()
	out.EndOfStream()

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	logger.Debug("watch finished after %d reading(s)", status.Readings())
	return err
}

func newWatchSink(cmd *cobra.Command) driven.EventSink {
	w := cmd.OutOrStdout()
	if !watchJSON {
		if width, ok := terminalWidth(w); ok {
			return newLiveSink(w, width)
		}
	}
	return sink.NewWriterSink(w)
}

func applyTraceHeader(r *simulated.Replayer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()

	if _, err := r.ApplyHeader(f); err != nil {
		return fmt.Errorf("read trace header: %w", err)
	}
	return nil
}

func replay(ctx context.Context, r *simulated.Replayer, path string) error {
	if watchFollow {
		return r.Follow(ctx, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()

	n, err := r.Replay(ctx, f)
	logger.Debug("replayed %d record(s) from %s", n, path)
	if err != nil {
		return fmt.Errorf("replay %s: %w", path, err)
	}
	return nil
}

// Package flightrecorder keeps a rolling execution trace in memory and writes it to disk when a request times out.
package flightrecorder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"sync/atomic"
	"time"

	"github.com/myrjola/coachplan/internal/errors"
)

const (
	defaultMinAge   = 5 * time.Minute
	defaultMaxBytes = 64 * 1024 * 1024 // 64MB
	defaultCooldown = 30 * time.Minute
)

var (
	ErrMissingLogger    = errors.NewSentinel("logger is required")
	ErrMissingDirectory = errors.NewSentinel("traces directory is required")
)

// Recorder captures timeout traces at most once per cooldown.
type Recorder struct {
	logger          *slog.Logger
	flightRecorder  *trace.FlightRecorder
	tracesDirectory string
	cooldown        time.Duration
	now             func() time.Time
	lastCapture     atomic.Int64
}

// Config configures the Recorder. Zero durations and sizes fall back to defaults.
type Config struct {
	Logger          *slog.Logger
	MinAge          time.Duration
	MaxBytes        uint64
	Cooldown        time.Duration
	TracesDirectory string
	// Now overrides the clock used for cooldowns and file names.
	Now func() time.Time
}

func New(cfg Config) (*Recorder, error) {
	if cfg.Logger == nil {
		return nil, ErrMissingLogger
	}
	if cfg.TracesDirectory == "" {
		return nil, ErrMissingDirectory
	}
	if err := os.MkdirAll(cfg.TracesDirectory, 0o700); err != nil { //nolint:mnd // owner only.
		return nil, errors.Wrap(err, "create traces directory", slog.String("dir", cfg.TracesDirectory))
	}

	minAge := orDefault(cfg.MinAge, defaultMinAge)
	maxBytes := cfg.MaxBytes
	if maxBytes == 0 {
		maxBytes = defaultMaxBytes
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Recorder{
		logger:          cfg.Logger,
		flightRecorder:  trace.NewFlightRecorder(trace.FlightRecorderConfig{MinAge: minAge, MaxBytes: maxBytes}),
		tracesDirectory: cfg.TracesDirectory,
		cooldown:        orDefault(cfg.Cooldown, defaultCooldown),
		now:             now,
		lastCapture:     atomic.Int64{},
	}, nil
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d == 0 {
		return fallback
	}
	return d
}

func (r *Recorder) Start(ctx context.Context) error {
	if err := r.flightRecorder.Start(); err != nil {
		return errors.Wrap(err, "start flight recorder")
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder started",
		slog.String("dir", r.tracesDirectory), slog.Duration("cooldown", r.cooldown))
	return nil
}

func (r *Recorder) Stop(ctx context.Context) {
	r.flightRecorder.Stop()
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder stopped")
}

// CaptureTimeoutTrace writes the buffered trace to a timeout-<timestamp>.trace file and returns its path.
// It returns an empty path while the cooldown from the previous capture is running.
func (r *Recorder) CaptureTimeoutTrace(ctx context.Context) string {
	now := r.now()
	last := r.lastCapture.Load()
	if last > 0 && now.Sub(time.Unix(last, 0)) < r.cooldown {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "skipping trace capture due to cooldown",
			slog.Time("last_capture", time.Unix(last, 0)))
		return ""
	}
	if !r.lastCapture.CompareAndSwap(last, now.Unix()) {
		return ""
	}

	fPath := filepath.Join(r.tracesDirectory, fmt.Sprintf("timeout-%s.trace", now.UTC().Format("20060102-150405")))
	if err := r.writeTrace(fPath); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to capture trace", errors.SlogError(err))
		return ""
	}
	r.logger.LogAttrs(ctx, slog.LevelWarn, "captured timeout trace", slog.String("file", fPath))
	return fPath
}

func (r *Recorder) writeTrace(fPath string) (err error) {
	file, err := os.Create(fPath)
	if err != nil {
		return errors.Wrap(err, "create trace file", slog.String("file", fPath))
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			err = errors.Join(err, errors.Wrap(closeErr, "close trace file"))
		}
	}()
	if _, err = r.flightRecorder.WriteTo(file); err != nil {
		return errors.Wrap(err, "write trace", slog.String("file", fPath))
	}
	return nil
}

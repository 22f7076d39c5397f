// Package dispatch runs blocking playback off the request goroutine.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sound-server/internal/player"
)

// ErrPlaybackFailed is the single failure callers see. The underlying cause
// stays in the error chain and in the local log.
var ErrPlaybackFailed = errors.New("playback failed")

const tracerName = "sound-server/internal/dispatch"

// Dispatcher hands every Play to its own goroutine and waits for it.
// There is no queue, no limit and no mutual exclusion: overlapping calls
// play at the same time.
type Dispatcher struct {
	player   player.AudioPlayer
	log      *slog.Logger
	tracer   trace.Tracer
	inFlight atomic.Int64
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTracerProvider replaces the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(d *Dispatcher) {
		d.tracer = tp.Tracer(tracerName)
	}
}

// New creates a dispatcher for p.
func New(p player.AudioPlayer, log *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		player: p,
		log:    log,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Backend returns the name of the underlying player.
func (d *Dispatcher) Backend() string {
	return d.player.Name()
}

// InFlight returns the number of plays currently running.
func (d *Dispatcher) InFlight() int64 {
	return d.inFlight.Load()
}

// Play plays the file at path and blocks until it finished. Cancelling ctx
// does not stop a sound that already started.
func (d *Dispatcher) Play(ctx context.Context, path string) error {
	ctx, span := d.tracer.Start(ctx, "dispatch.play", trace.WithAttributes(
		attribute.String("sound.path", path),
		attribute.String("player.backend", d.player.Name()),
	))
	defer span.End()

	start := time.Now()
	d.inFlight.Add(1)
	done := make(chan error, 1)
	go func() {
		err := d.run(context.WithoutCancel(ctx), path)
		d.inFlight.Add(-1)
		done <- err
	}()
	err := <-done

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "playback failed")
		d.log.Error("playback failed",
			"path", path,
			"kind", player.KindOf(err),
			"elapsed", time.Since(start),
			"error", err,
		)
		return fmt.Errorf("%w: %w", ErrPlaybackFailed, err)
	}

	d.log.Info("played", "path", path, "elapsed", time.Since(start))
	return nil
}

// run calls the player and turns a panic into an error so one bad file can
// never take the process down.
func (d *Dispatcher) run(ctx context.Context, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("player panic: %v", r)
		}
	}()
	return d.player.Play(ctx, path)
}

// Package oto plays decoded files on the default output device through oto.
//
// oto allows a single output context per process, so the context is opened
// once, on the first Play, and shared. Every Play gets its own oto player
// which is closed before Play returns. Overlapping plays are mixed by oto.
package oto

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	otov3 "github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep/v2"

	"sound-server/internal/player"
	"sound-server/internal/player/decode"
)

// Device opens sinks on an output context.
type Device interface {
	NewSink(r io.Reader) Sink
}

// Sink is one playing stream. *otov3.Player satisfies it.
type Sink interface {
	Play()
	IsPlaying() bool
	Err() error
	Close() error
}

// OpenFunc opens the output device.
type OpenFunc func(cfg player.Config) (Device, error)

// Player implements player.AudioPlayer on top of oto.
type Player struct {
	config player.Config
	log    *slog.Logger
	open   OpenFunc
	poll   time.Duration

	once   sync.Once
	dev    Device
	devErr error
}

// New creates an oto player. A nil open uses the host's default device.
func New(config player.Config, log *slog.Logger, open OpenFunc) *Player {
	if open == nil {
		open = OpenDefault
	}
	return &Player{
		config: config,
		log:    log,
		open:   open,
		poll:   10 * time.Millisecond,
	}
}

// NewDefault creates an oto player with default configuration.
func NewDefault(log *slog.Logger) *Player {
	return New(player.DefaultConfig(), log, nil)
}

// Name returns the player implementation name.
func (p *Player) Name() string {
	return "oto"
}

// Open opens the output device ahead of the first Play, so a host without
// audio fails at startup rather than on every request.
func (p *Player) Open() error {
	_, err := p.openDevice()
	return err
}

// Play decodes path and blocks until oto has drained it.
func (p *Player) Play(_ context.Context, path string) error {
	dev, err := p.openDevice()
	if err != nil {
		return err
	}

	s, err := decode.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	p.log.Debug("decoded",
		"path", path,
		"codec", s.Codec,
		"sample_rate", int(s.Format.SampleRate),
		"channels", s.Format.NumChannels,
	)

	src := newPCMReader(decode.Resampled(s, beep.SampleRate(p.config.SampleRate)), p.config.Channels)
	sink := dev.NewSink(src)
	defer sink.Close()

	start := time.Now()
	sink.Play()
	for sink.IsPlaying() {
		time.Sleep(p.poll)
	}

	if err := sink.Err(); err != nil {
		return &player.PlaybackError{Op: "play", Kind: player.KindDevice, Path: path, Err: err}
	}
	if err := src.Err(); err != nil {
		return &player.PlaybackError{Op: "decode " + string(s.Codec), Kind: player.KindDecode, Path: path, Err: err}
	}

	p.log.Debug("playback finished", "path", path, "elapsed", time.Since(start))
	return nil
}

func (p *Player) openDevice() (Device, error) {
	dev, err := p.device()
	if err != nil {
		return nil, &player.PlaybackError{Op: "open device", Kind: player.KindDevice, Err: err}
	}
	return dev, nil
}

// device opens the output context on first use. A failed open is not retried:
// oto refuses a second context in the same process.
func (p *Player) device() (Device, error) {
	p.once.Do(func() {
		p.dev, p.devErr = p.open(p.config)
		if p.devErr != nil {
			p.log.Error("audio device unavailable", "error", p.devErr)
		}
	})
	return p.dev, p.devErr
}

// OpenDefault opens the default output device as a float32 context.
func OpenDefault(cfg player.Config) (Device, error) {
	ctx, ready, err := otov3.NewContext(&otov3.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       otov3.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("oto context: %w", err)
	}
	<-ready
	return &otoDevice{ctx: ctx}, nil
}

type otoDevice struct {
	ctx *otov3.Context
}

func (d *otoDevice) NewSink(r io.Reader) Sink {
	return d.ctx.NewPlayer(r)
}

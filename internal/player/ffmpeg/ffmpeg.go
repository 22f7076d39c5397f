package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"sound-server/internal/player"
)

// ErrUnsupportedOS is returned on hosts that have no FFmpeg output muxer for
// the default sound device.
var ErrUnsupportedOS = errors.New("ffmpeg backend is not supported on this OS")

// Supported reports whether the FFmpeg backend can play on goos.
func Supported(goos string) bool {
	return goos == "linux" || goos == "darwin"
}

// Player implements player.AudioPlayer by spawning one FFmpeg process per
// sound. FFmpeg sniffs the container itself and writes to the OS sink.
type Player struct {
	config player.Config
	log    *slog.Logger
	binary string
	goos   string
}

// New creates a new FFmpeg player with the given configuration.
func New(config player.Config, log *slog.Logger) *Player {
	return &Player{
		config: config,
		log:    log,
		binary: "ffmpeg",
		goos:   runtime.GOOS,
	}
}

// NewDefault creates a new FFmpeg player with default configuration.
func NewDefault(log *slog.Logger) *Player {
	return New(player.DefaultConfig(), log)
}

// Name returns the player implementation name.
func (p *Player) Name() string {
	return "ffmpeg"
}

// Play runs FFmpeg on path and waits for it to exit. The context is not used
// to stop the process: a started sound always plays to the end.
func (p *Player) Play(_ context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return &player.PlaybackError{Op: "open", Kind: player.KindIO, Path: path, Err: err}
	}

	args, err := p.buildArgs(path)
	if err != nil {
		return &player.PlaybackError{Op: "ffmpeg", Kind: player.KindDevice, Path: path, Err: err}
	}

	cmd := exec.Command(p.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return &player.PlaybackError{Op: "start ffmpeg", Kind: player.KindDevice, Path: path, Err: err}
	}
	p.log.Debug("ffmpeg running", "pid", cmd.Process.Pid, "path", path)

	if err := cmd.Wait(); err != nil {
		kind := player.KindDecode
		msg := strings.TrimSpace(stderr.String())
		if isOutputFailure(msg) {
			kind = player.KindDevice
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && msg != "" {
			err = fmt.Errorf("%w: %s", err, lastLine(msg))
		}
		return &player.PlaybackError{Op: "ffmpeg", Kind: kind, Path: path, Err: err}
	}

	p.log.Debug("playback finished", "path", path)
	return nil
}

// buildArgs creates the FFmpeg arguments for the target OS.
func (p *Player) buildArgs(path string) ([]string, error) {
	channels := fmt.Sprintf("%d", p.config.Channels)
	sampleRate := fmt.Sprintf("%d", p.config.SampleRate)
	device := p.config.Device
	if device == "" {
		device = "default"
	}

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "error",
		"-i", path,
		"-ac", channels,
		"-ar", sampleRate,
	}

	switch p.goos {
	case "linux":
		// PulseAudio (most modern Linux)
		return append(args, "-f", "pulse", device), nil
	case "darwin":
		return append(args, "-f", "audiotoolbox", "-"), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, p.goos)
}

// isOutputFailure reports whether FFmpeg's stderr points at the output device
// rather than the input file.
func isOutputFailure(stderr string) bool {
	s := strings.ToLower(stderr)
	for _, marker := range []string{"pulse", "audiotoolbox", "could not write header", "error opening output"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

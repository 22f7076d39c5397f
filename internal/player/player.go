// Package player defines the audio output seam used by the dispatcher.
package player

import "context"

//go:generate mockgen -source=player.go -destination=mocks/player.go -package=mocks

// AudioPlayer plays a local audio file on the host's output device.
type AudioPlayer interface {
	// Play decodes the file at path and blocks until it has been played
	// completely or playback failed. Implementations release every device
	// handle they acquired before returning.
	Play(ctx context.Context, path string) error

	// Name returns the backend name (e.g., "oto", "ffmpeg").
	Name() string
}

// Config holds output device options.
type Config struct {
	Channels   int    // Number of audio channels (default: 2)
	SampleRate int    // Sample rate in Hz (default: 44100)
	Device     string // Output device, ffmpeg backend only (default: "default")
}

// DefaultConfig returns the default player configuration.
func DefaultConfig() Config {
	return Config{
		Channels:   2,
		SampleRate: 44100,
		Device:     "default",
	}
}

package cmd

import (
	"fmt"
	"log/slog"
	"runtime"

	"sound-server/internal/config"
	applog "sound-server/internal/log"
	"sound-server/internal/player"
	"sound-server/internal/player/ffmpeg"
	"sound-server/internal/player/oto"
	"sound-server/pkg/deps"
)

// newPlayer builds the audio backend selected in cfg.
func newPlayer(cfg config.Config, log *slog.Logger) (player.AudioPlayer, error) {
	pc := player.Config{
		Channels:   cfg.Audio.Channels,
		SampleRate: cfg.Audio.SampleRate,
		Device:     cfg.Audio.Device,
	}
	plog := applog.Component(log, "player")

	switch cfg.Backend {
	case config.BackendOto:
		return oto.New(pc, plog, nil), nil
	case config.BackendFFmpeg:
		if !ffmpeg.Supported(runtime.GOOS) {
			return nil, fmt.Errorf("%w: %s", ffmpeg.ErrUnsupportedOS, runtime.GOOS)
		}
		if err := deps.NewChecker("ffmpeg").CheckAndLog(log); err != nil {
			return nil, err
		}
		return ffmpeg.New(pc, plog), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

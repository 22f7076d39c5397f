package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sound-server/internal/log"
	"sound-server/internal/player"
)

func TestBuildArgs(t *testing.T) {
	cfg := player.Config{Channels: 2, SampleRate: 48000, Device: "default"}
	tests := []struct {
		goos string
		tail []string
	}{
		{"linux", []string{"-f", "pulse", "default"}},
		{"darwin", []string{"-f", "audiotoolbox", "-"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			p := New(cfg, log.Discard())
			p.goos = tt.goos
			args, err := p.buildArgs("sounds/bell.wav")
			require.NoError(t, err)

			assert.Equal(t, []string{"-nostdin", "-hide_banner", "-loglevel", "error", "-i", "sounds/bell.wav", "-ac", "2", "-ar", "48000"}, args[:10])
			assert.Equal(t, tt.tail, args[10:])
		})
	}
}

func TestPlay_UnsupportedOS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bell.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))

	p := NewDefault(log.Discard())
	p.goos = "windows"
	p.binary = filepath.Join(t.TempDir(), "no-such-ffmpeg")

	err := p.Play(context.Background(), path)
	assert.True(t, player.IsKind(err, player.KindDevice))
	assert.ErrorIs(t, err, ErrUnsupportedOS)
	assert.False(t, Supported("windows"))
	assert.True(t, Supported("linux"))
	assert.True(t, Supported("darwin"))
}

func TestPlay_MissingFile(t *testing.T) {
	p := NewDefault(log.Discard())
	err := p.Play(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	assert.True(t, player.IsKind(err, player.KindIO))
}

func TestPlay_MissingBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bell.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))

	p := NewDefault(log.Discard())
	p.binary = filepath.Join(t.TempDir(), "no-such-ffmpeg")
	err := p.Play(context.Background(), path)
	assert.True(t, player.IsKind(err, player.KindDevice))
}

func TestPlay_ExitFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "ffmpeg")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho 'Invalid data found when processing input' >&2\nexit 1\n"), 0o755))
	path := filepath.Join(dir, "bell.wav")
	require.NoError(t, os.WriteFile(path, []byte("junk"), 0o644))

	p := NewDefault(log.Discard())
	p.binary = script
	err := p.Play(context.Background(), path)
	require.Error(t, err)
	assert.True(t, player.IsKind(err, player.KindDecode))
	assert.Contains(t, err.Error(), "Invalid data found")
}

func TestIsOutputFailure(t *testing.T) {
	assert.True(t, isOutputFailure("[pulse @ 0x1] pa_simple_new failed: Connection refused"))
	assert.True(t, isOutputFailure("Could not write header for output file #0"))
	assert.False(t, isOutputFailure("bell.wav: Invalid data found when processing input"))
}

func TestName(t *testing.T) {
	assert.Equal(t, "ffmpeg", NewDefault(log.Discard()).Name())
}

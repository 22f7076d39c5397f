// Package config holds the runtime configuration of the sound server.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Backend names accepted by the "backend" key.
const (
	BackendOto    = "oto"
	BackendFFmpeg = "ffmpeg"
)

// EnvPrefix is prepended to every environment variable override.
const EnvPrefix = "SOUND_SERVER"

// Config is the fully resolved server configuration.
type Config struct {
	Addr      string      `mapstructure:"addr"`
	SoundsDir string      `mapstructure:"sounds_dir"`
	Backend   string      `mapstructure:"backend"`
	Audio     AudioConfig `mapstructure:"audio"`
	Log       LogConfig   `mapstructure:"log"`
	Watch     bool        `mapstructure:"watch"`
	Trace     bool        `mapstructure:"trace"`
}

// AudioConfig configures the output device.
type AudioConfig struct {
	SampleRate int    `mapstructure:"sample_rate"`
	Channels   int    `mapstructure:"channels"`
	Device     string `mapstructure:"device"` // only used by the ffmpeg backend
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		Addr:      "127.0.0.1:3030",
		SoundsDir: "sounds",
		Backend:   BackendOto,
		Audio: AudioConfig{
			SampleRate: 44100,
			Channels:   2,
			Device:     "default",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults registers Defaults() on v so that env and file lookups see every key.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("addr", d.Addr)
	v.SetDefault("sounds_dir", d.SoundsDir)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("audio.sample_rate", d.Audio.SampleRate)
	v.SetDefault("audio.channels", d.Audio.Channels)
	v.SetDefault("audio.device", d.Audio.Device)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("watch", d.Watch)
	v.SetDefault("trace", d.Trace)
}

// Load reads an optional config file and unmarshals v into a validated Config.
// An empty path skips the file.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks that every field holds a usable value.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr is required", ErrInvalid)
	case c.SoundsDir == "":
		return fmt.Errorf("%w: sounds_dir is required", ErrInvalid)
	case c.Backend != BackendOto && c.Backend != BackendFFmpeg:
		return fmt.Errorf("%w: unknown backend %q (want %s or %s)", ErrInvalid, c.Backend, BackendOto, BackendFFmpeg)
	case c.Audio.SampleRate <= 0:
		return fmt.Errorf("%w: audio.sample_rate must be positive", ErrInvalid)
	case c.Audio.Channels < 1 || c.Audio.Channels > 2:
		return fmt.Errorf("%w: audio.channels must be 1 or 2", ErrInvalid)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log.level %q", ErrInvalid, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

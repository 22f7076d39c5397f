// Package cmd implements the sound-server command line.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sound-server/internal/config"
	applog "sound-server/internal/log"
)

// app carries state shared by all subcommands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	log     *slog.Logger
	bindErr error
}

// Execute runs the root command and exits with status 1 on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree. Running it without a subcommand serves HTTP.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	d := config.Defaults()

	root := &cobra.Command{
		Use:          "sound-server",
		Short:        "Play sound files from a directory on request",
		Long:         `sound-server lists the audio files of a directory over HTTP and plays them on the host's default output device.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
		RunE: a.runServe,
	}

	f := root.PersistentFlags()
	f.StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	f.String("addr", d.Addr, "HTTP listen address")
	f.String("dir", d.SoundsDir, "directory containing the sound files")
	f.String("backend", d.Backend, "audio backend: oto or ffmpeg")
	f.String("log-level", d.Log.Level, "log level: debug, info, warn, error")
	f.String("log-format", d.Log.Format, "log format: text or json")
	f.Bool("watch", d.Watch, "log changes to the sounds directory")
	f.Bool("trace", d.Trace, "write OpenTelemetry spans to stderr")

	for key, flag := range map[string]string{
		"addr":       "addr",
		"sounds_dir": "dir",
		"backend":    "backend",
		"log.level":  "log-level",
		"log.format": "log-format",
		"watch":      "watch",
		"trace":      "trace",
	} {
		if err := a.v.BindPFlag(key, f.Lookup(flag)); err != nil {
			a.bindErr = errors.Join(a.bindErr, fmt.Errorf("bind --%s: %w", flag, err))
		}
	}

	root.AddCommand(a.newServeCmd(), a.newPlayCmd(), a.newSoundsCmd())
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	if a.bindErr != nil {
		return a.bindErr
	}
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = applog.Setup(applog.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, cmd.ErrOrStderr())
	a.log.Debug("config loaded", "config", fmt.Sprintf("%+v", cfg))
	return nil
}

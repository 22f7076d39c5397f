package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sound-server/internal/dispatch"
	"sound-server/internal/library"
	applog "sound-server/internal/log"
)

func (a *app) newSoundsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sounds",
		Short: "List the sound files in the sounds directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := library.New(a.cfg.SoundsDir).List()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func (a *app) newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play [sound]",
		Short: "Play one sound locally, or the first one found",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := library.New(a.cfg.SoundsDir)

			var name string
			if len(args) == 1 {
				name = args[0]
			} else {
				first, err := lib.First()
				if errors.Is(err, library.ErrEmpty) {
					return fmt.Errorf("no sound files found in %s", lib.Dir())
				}
				if err != nil {
					return err
				}
				name = first
			}

			path, err := lib.Resolve(name)
			if err != nil {
				return fmt.Errorf("sound file '%s' not found", name)
			}

			p, err := newPlayer(a.cfg, a.log)
			if err != nil {
				return err
			}
			if err := dispatch.New(p, applog.Component(a.log, "dispatch")).Play(cmd.Context(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully played sound: %s\n", name)
			return nil
		},
	}
}

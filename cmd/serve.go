package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sound-server/internal/dispatch"
	"sound-server/internal/library"
	applog "sound-server/internal/log"
	"sound-server/internal/server"
	"sound-server/internal/tracing"
)

func (a *app) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE:  a.runServe,
	}
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, shutdownTracing, err := tracing.Setup(a.cfg.Trace, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			a.log.Warn("trace flush failed", "error", err)
		}
	}()

	lib := library.New(a.cfg.SoundsDir)
	if info, err := os.Stat(lib.Dir()); err != nil || !info.IsDir() {
		a.log.Warn("sounds directory is not readable yet", "dir", lib.Dir())
	}

	p, err := newPlayer(a.cfg, a.log)
	if err != nil {
		return err
	}
	if o, ok := p.(opener); ok {
		if err := o.Open(); err != nil {
			return err
		}
	}
	d := dispatch.New(p, applog.Component(a.log, "dispatch"))

	api := server.NewAPI(lib, d, applog.Component(a.log, "api"))
	router := server.SetupRouter(api, applog.Component(a.log, "http"))
	srv := server.New(a.cfg.Addr, router, applog.Component(a.log, "http"))

	printBanner(cmd.OutOrStdout(), a.cfg.Addr, lib.Dir(), p.Name())

	g, gctx := errgroup.WithContext(ctx)
	if a.cfg.Watch {
		wlog := applog.Component(a.log, "library")
		g.Go(func() error {
			if err := library.NewWatcher(lib, wlog, nil).Run(gctx, nil); err != nil {
				wlog.Warn("directory watch disabled", "error", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		return srv.Run(gctx)
	})
	return g.Wait()
}

// opener is implemented by backends that hold the output device open for
// the life of the process.
type opener interface {
	Open() error
}

func printBanner(w io.Writer, addr, dir, backend string) {
	fmt.Fprintf(w, "Audio server starting on http://%s\n", addr)
	fmt.Fprintf(w, "Sounds directory: %s (backend: %s)\n", dir, backend)
	fmt.Fprintln(w, "Endpoints:")
	fmt.Fprintln(w, `  POST /play   - Play a sound file (JSON body: {"sound": "filename.wav"})`)
	fmt.Fprintln(w, "  GET  /play   - Play the first sound file found")
	fmt.Fprintln(w, "  GET  /sounds - List available sound files")
	fmt.Fprintln(w, "  GET  /health - Health check")
}

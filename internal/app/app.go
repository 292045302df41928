package app

import (
	"context"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/mockchat/internal/config"
	"github.com/vovakirdan/mockchat/internal/core"
	"github.com/vovakirdan/mockchat/internal/session"
	"github.com/vovakirdan/mockchat/internal/terminal"
	transporthttp "github.com/vovakirdan/mockchat/internal/transport/http"
)

// App wires together the bus, the session adapter and the view layers.
type App struct {
	bus             *core.Bus
	sess            *session.Session
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger, notifiers ...session.Notifier) *App {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	bus := core.NewBus(BusOptions(cfg, logger))
	sess := session.New(bus, logger, notifiers...)
	server := transporthttp.NewServer(sess, bus, cfg, logger)

	return &App{
		bus:             bus,
		sess:            sess,
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}
}

// BusOptions maps configuration onto bus options.
func BusOptions(cfg config.Config, logger *zerolog.Logger) core.Options {
	seed := core.DefaultSeed()
	if !cfg.SeedHistory {
		seed.Messages = nil
	}
	if len(cfg.Synthetic.Phrases) > 0 {
		seed.Phrases = cfg.Synthetic.Phrases
	}

	return core.Options{
		Rooms:       cfg.Rooms,
		DefaultRoom: cfg.DefaultRoom,
		Schedule: &core.Schedule{
			FirstMin: cfg.Synthetic.FirstDelayMin,
			FirstMax: cfg.Synthetic.FirstDelayMax,
			RearmMin: cfg.Synthetic.RearmDelayMin,
			RearmMax: cfg.Synthetic.RearmDelayMax,
		},
		Seed:   &seed,
		Logger: logger,
	}
}

// Bus returns the simulated channel.
func (a *App) Bus() *core.Bus {
	return a.bus
}

// Session returns the session adapter.
func (a *App) Session() *session.Session {
	return a.sess
}

// Handler returns the view server handler.
func (a *App) Handler() stdhttp.Handler {
	return a.server.Handler
}

// Run starts the view server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("view server listening")
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// RunTerminal runs the interactive terminal client until it exits.
func (a *App) RunTerminal(ctx context.Context, in io.Reader, out io.Writer, username string, plain bool) error {
	defer a.cleanup()

	client := terminal.NewClient(a.sess, a.bus, in, terminal.NewRenderer(out, plain), a.log)
	return client.Run(ctx, username)
}

// cleanup stops the generator and detaches the session.
func (a *App) cleanup() {
	a.sess.Close()
	a.bus.Close()
	a.log.Debug().Msg("bus stopped")
}

package app

import (
	"context"
	"errors"
	"net"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/pthm/ccpricing/internal/closer"
	"github.com/pthm/ccpricing/internal/config"
	"github.com/pthm/ccpricing/internal/logger"
)

type app struct {
	di     *di
	closer *closer.Closer
	server *http.Server
}

func New(ctx context.Context) (*app, error) {
	a := &app{closer: closer.New()}

	if err := a.init(ctx); err != nil {
		a.shutdown()
		return nil, err
	}

	return a, nil
}

// Run serves until ctx is done, then shuts down gracefully.
func (a *app) Run(ctx context.Context) error { return a.run(ctx) }

func (a *app) init(ctx context.Context) error {
	inits := []func(context.Context) error{
		a.initConfig,
		a.initLogger,
		a.initCloser,
		a.initDI,
		a.initServer,
	}

	for _, initFn := range inits {
		if err := initFn(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) initConfig(_ context.Context) error {
	return config.Load()
}

func (a *app) initLogger(_ context.Context) error {
	return logger.Init(
		config.C().Logger.Level(),
		config.C().Logger.AsJSON(),
	)
}

func (a *app) initCloser(_ context.Context) error {
	a.closer.SetLogger(logger.L())
	return nil
}

func (a *app) initDI(_ context.Context) error {
	a.di = NewDI(a.closer)
	return nil
}

func (a *app) initServer(ctx context.Context) error {
	cfg := config.C()

	handler, err := a.di.Handler(ctx)
	if err != nil {
		logger.Error(ctx, "failed to build the router", logger.ErrorF(err))
		return err
	}

	a.server = &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadTimeout(),
	}
	return nil
}

func (a *app) run(ctx context.Context) error {
	defer a.shutdown()

	lis, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		logger.Error(ctx, "failed to listen", logger.ErrorF(err))
		return err
	}

	sessions, err := a.di.Sessions(ctx)
	if err != nil {
		_ = lis.Close()
		return err
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return sessions.Run(egCtx)
	})

	eg.Go(func() error {
		logger.Info(egCtx,
			"🚀 pricing server listening",
			logger.String("address", lis.Addr().String()),
			logger.String("router", config.C().Server.Router()),
		)
		err := a.server.Serve(lis)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		return a.stopServer()
	})

	return eg.Wait()
}

func (a *app) stopServer() error {
	ctx, cancel := context.WithTimeout(
		context.Background(), // do not inherit cancellation from ctx
		config.C().Server.ShutdownTimeout(),
	)
	defer cancel()
	return a.server.Shutdown(ctx)
}

//nolint:contextcheck
func (a *app) shutdown() {
	ctx := context.Background()
	if cfg := config.C(); cfg != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Server.ShutdownTimeout())
		defer cancel()
	}

	if err := a.closer.CloseAll(ctx); err != nil {
		logger.Error(ctx, "❌ Error during server shutdown", logger.ErrorF(err))
		return
	}
	logger.Info(ctx, "✅ Server stopped")
	_ = logger.Sync()
}

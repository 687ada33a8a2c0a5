package application

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"imhungri/pkg/application/connectors"
	"imhungri/pkg/application/modules"
	"imhungri/pkg/contextx"

	"imhungri/internal/config"
	service "imhungri/internal/domain/service/deal"
	"imhungri/internal/infrastructure/functions"
	"imhungri/internal/infrastructure/persistence"
	"imhungri/internal/infrastructure/realtime"
	"imhungri/internal/optimistic"
	"imhungri/internal/querycache"
	"imhungri/internal/server"
	"imhungri/internal/store"
	"imhungri/internal/worker"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	appName                     = "imhungri"
	appVersion                  = "1.0.0"
	httpServerReadHeaderTimeout = 5 * time.Second
	profileHintTTL              = 15 * time.Minute
)

// Run wires the application together and blocks until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}

	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
	db := pg.Client(ctx)
	defer pg.Close(ctx)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}

	dealRepo := persistence.NewDealRepository(db)
	profileRepo := persistence.NewProfileRepository(db)
	restaurantRepo := persistence.NewRestaurantRepository(db)

	session := store.NewSession()
	location := store.NewLocation()
	profileHints := store.NewProfileHints(profileHintTTL)

	cache := querycache.New()
	mutator := optimistic.NewMutator(cache)
	pending := store.NewPendingUpdates()

	functionsClient := functions.NewClient(cfg.Backend, session)

	svc := service.NewDealService(
		dealRepo,
		profileRepo,
		restaurantRepo,
		functionsClient,
		cache,
		cfg.Cache,
		mutator,
		pending,
		session,
		location,
		profileHints,
	)

	listener := realtime.NewListener(cfg.Postgres.DSN)
	if err := listener.Start(ctx); err != nil {
		return fmt.Errorf("realtime listener start: %w", err)
	}
	defer listener.Stop()

	syncer := worker.NewSyncer(listener.Events(), cache)
	if err := syncer.Start(ctx); err != nil {
		return fmt.Errorf("syncer start: %w", err)
	}
	defer syncer.Stop()

	router := server.NewRouter(
		server.NewDealServer(svc, session, location),
		cfg.Server.LogFieldMaxLen,
	)

	httpServer := &http.Server{ //nolint:exhaustruct
		Addr:              cfg.Server.ListenAddress,
		Handler:           router,
		ReadHeaderTimeout: httpServerReadHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)

	modules.HTTPServer{ShutdownTimeout: cfg.Server.ShutdownTimeout}.Run(gCtx, g, httpServer)
	modules.ProbeServer{
		Name:          appName,
		Version:       appVersion,
		ListenAddress: cfg.Server.ProbeListenAddress,
	}.Run(gCtx, g)
	modules.MetricServer{ListenAddress: cfg.Server.MetricListenAddress}.Run(gCtx, g)

	logger(ctx).Info("application started")

	if err := g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	// Let in-flight optimistic persists settle before the process exits.
	mutator.Wait()
	cache.WaitRefetches()

	logger(ctx).Info("application stopping")

	return nil
}

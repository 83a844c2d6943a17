package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	accrual "github.com/GlebRadaev/rewardsledger/internal/accrual"
	"github.com/GlebRadaev/rewardsledger/internal/config"
	"github.com/GlebRadaev/rewardsledger/internal/handlers"
	"github.com/GlebRadaev/rewardsledger/internal/memstore"
	"github.com/GlebRadaev/rewardsledger/internal/pg"
	"github.com/GlebRadaev/rewardsledger/internal/repo"
	"github.com/GlebRadaev/rewardsledger/internal/service"
	"github.com/GlebRadaev/rewardsledger/internal/tiers"
	"github.com/GlebRadaev/rewardsledger/pkg/clients"
	"github.com/GlebRadaev/rewardsledger/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg  *config.Config
	api  *handlers.Handlers
	srv  *service.Services
	repo *repo.Repositories
	ext  *accrual.Service
	pool *pgxpool.Pool
	addr net.Addr

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.start(ctx, config.New())
}

func (a *Application) start(ctx context.Context, cfg *config.Config) error {
	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	catalog, err := tiers.Load(cfg.TiersFile)
	if err != nil {
		zap.L().Error("tier catalog rejected: ", zap.Error(err))
		return err
	}

	a.cfg = cfg
	if err := a.initStorage(ctx); err != nil {
		return err
	}
	a.srv = service.New(a.repo, catalog, cfg)
	a.api = handlers.New(a.srv, cfg.CORSOrigins)
	a.ext = accrual.New(cfg, a.srv.PurchaseService, clients.NewHTTPClient())

	if err = a.startHTTPServer(ctx); err != nil {
		a.closeStorage()
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.startAccrualServer(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully", zap.String("storage", cfg.Storage))
	return nil
}

func (a *Application) initStorage(ctx context.Context) error {
	if a.cfg.Storage == config.StorageMemory {
		store := memstore.New()
		store.SeedRewards(memstore.DefaultRewards()...)
		a.repo = repo.NewMemory(store)
		zap.L().Warn("using in-memory storage, data is lost on restart")
		return nil
	}

	pool, err := getPgxpool(ctx, a.cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		pool.Close()
		return fmt.Errorf("can't run migrations: %w", err)
	}
	a.pool = pool
	a.repo = repo.New(pg.New(pool), pg.NewTXManager(pool))
	return nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, err
	}
	return dbpool, nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", a.cfg.Address)
	if err != nil {
		return err
	}
	a.addr = ln.Addr()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(sCtx); err != nil {
			zap.L().Error("http server shutdown failed", zap.Error(err))
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server", zap.String("address", a.addr.String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) startAccrualServer(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.ext.Run(ctx)
	}()
}

// closeStorage runs after the http server and the accrual worker are gone,
// so no settlement is left holding a connection.
func (a *Application) closeStorage() {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	a.closeStorage()
	close(a.errCh)
	wg.Wait()

	return appErr
}

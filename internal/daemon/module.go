package daemon

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/appdir"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/bus"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/chat"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/config"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/content"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/httpapi"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/localstore"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/lock"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/logging"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/session"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/settings"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/store"
)

// Params holds the resolved startup options passed to the fx module.
type Params struct {
	ConfigPath string
	DataDir    string // optional override; empty = config value or default
}

// Module returns the fx module for the daemon, composing all providers and
// lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideLocalStore,
			provideResolver,
			provideManager,
			provideSynchronizer,
			provideContentService,
			provideServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) *config.Config {
	cfg := config.LoadOrDefault(p.ConfigPath, appdir.DataDir())
	if p.DataDir != "" {
		cfg.DataDir = p.DataDir
	}
	return cfg
}

func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	if err := appdir.EnsureDataDir(cfg.DataDir); err != nil {
		return nil, err
	}
	return logging.New(appdir.LogPath(cfg.DataDir), cfg.DataDir)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(cfg *config.Config, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring data dir lock", zap.String("data_dir", cfg.DataDir))
	l, err := lock.Acquire(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	logger.Info("data dir lock acquired")
	return l, nil
}

func provideStore(cfg *config.Config, logger *zap.Logger) (*store.DB, error) {
	dbPath := appdir.DBPath(cfg.DataDir)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideLocalStore(cfg *config.Config) (*localstore.Store, error) {
	return localstore.Open(appdir.StatePath(cfg.DataDir))
}

func provideResolver(ls *localstore.Store, db *store.DB, b *bus.Bus, logger *zap.Logger) *settings.Resolver {
	return settings.NewResolver(ls, db, b, logger)
}

func provideManager(ls *localstore.Store, db *store.DB, resolver *settings.Resolver, b *bus.Bus, logger *zap.Logger) *session.Manager {
	return session.NewManager(ls, db, resolver, b, logger)
}

func provideSynchronizer(cfg *config.Config, db *store.DB, b *bus.Bus, logger *zap.Logger) *chat.Synchronizer {
	return chat.NewSynchronizer(db, b, logger, cfg.PollInterval())
}

func provideContentService(db *store.DB, b *bus.Bus, logger *zap.Logger) *content.Service {
	return content.NewService(db, b, logger)
}

func provideServer(cfg *config.Config, logger *zap.Logger, b *bus.Bus, db *store.DB, resolver *settings.Resolver,
	manager *session.Manager, synchronizer *chat.Synchronizer, contentSvc *content.Service) *httpapi.Server {
	return httpapi.NewServer(cfg, logger, b, db, resolver, manager, synchronizer, contentSvc)
}

func registerLifecycle(lc fx.Lifecycle, srv *httpapi.Server, lk *lock.Lock, resolver *settings.Resolver,
	manager *session.Manager, synchronizer *chat.Synchronizer, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Warm the settings cache so the login surface works even if the
			// store turns unreachable later.
			s := resolver.Resolve()
			logger.Info("settings resolved",
				zap.String("nama", s.NamaPerpustakaan), zap.Int64("revisi", s.Revisi))

			state := manager.Restore()
			logger.Info("session restored", zap.String("state", string(state)))

			synchronizer.Start(context.Background())

			if err := srv.Start(); err != nil {
				return err
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			synchronizer.Stop()
			if err := srv.Stop(ctx); err != nil {
				logger.Warn("error stopping http server", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/soaringjerry/PainMap/internal/api"
	"github.com/soaringjerry/PainMap/internal/config"
	dbstore "github.com/soaringjerry/PainMap/internal/db"
	"github.com/soaringjerry/PainMap/internal/prefs"
	"github.com/soaringjerry/PainMap/internal/services"
)

type closer func() error

func noopClose() error { return nil }

// openStore returns the configured main store. For sqlite the schema is
// migrated before the store is handed out.
func openStore(cfg *config.Config, log *zap.Logger) (api.Store, closer, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		log.Info("using in-memory store")
		return api.NewMemoryStore(), noopClose, nil
	case config.StoreSQLite:
		store, sqlDB, err := dbstore.Open(cfg.Store.SQLitePath, cfg.Store.MigrationsDir, log)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		log.Info("using sqlite store", zap.String("path", cfg.Store.SQLitePath))
		return store, sqlDB.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// openPreferences returns a dedicated preference store, or nil when
// preferences share the main store.
func openPreferences(ctx context.Context, cfg *config.Config, log *zap.Logger) (services.PreferenceStore, closer, error) {
	if cfg.Preferences.Driver != config.PrefsRedis {
		return nil, noopClose, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	store, err := prefs.Open(ctx, prefs.Options{
		Addr:     cfg.Preferences.RedisAddr,
		Password: cfg.Preferences.RedisPassword,
		DB:       cfg.Preferences.RedisDB,
		TTL:      cfg.PreferenceTTL(),
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info("using redis preference store", zap.String("addr", cfg.Preferences.RedisAddr))
	return store, store.Close, nil
}

// migrateOnly applies pending sqlite migrations and exits.
func migrateOnly(cfg *config.Config, log *zap.Logger) error {
	if cfg.Store.Driver != config.StoreSQLite {
		return errors.New("migrations only apply to the sqlite store")
	}
	_, sqlDB, err := dbstore.Open(cfg.Store.SQLitePath, cfg.Store.MigrationsDir, log)
	if err != nil {
		return err
	}
	log.Info("migrations applied", zap.String("path", cfg.Store.SQLitePath))
	return sqlDB.Close()
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/soaringjerry/PainMap/internal/api"
	"github.com/soaringjerry/PainMap/internal/config"
	"github.com/soaringjerry/PainMap/internal/logging"
	"github.com/soaringjerry/PainMap/internal/middleware"
	"github.com/soaringjerry/PainMap/internal/services"
	"github.com/soaringjerry/PainMap/internal/utils"
)

func main() {
	configPath := flag.String("config", utils.SafeEnv("PAINMAP_CONFIG", ""), "path to YAML config file")
	migrate := flag.Bool("migrate", false, "apply sqlite migrations and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, "painmap")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if *migrate {
		if err := migrateOnly(cfg, log); err != nil {
			log.Fatal("migrate failed", zap.Error(err))
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	store, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer logClose(log, "store", closeStore)

	prefStore, closePrefs, err := openPreferences(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer logClose(log, "preferences", closePrefs)

	rt := api.NewRouterWithOptions(api.Options{Store: store, Preferences: prefStore, Logger: log})
	mux := http.NewServeMux()
	rt.Register(mux)
	registerMeta(mux, cfg.Build, backendChecks(store, prefStore), log)
	registerFrontend(mux, cfg.Frontend, log)

	go sweepSessions(ctx, rt.Sessions(), cfg.SessionIdle(), cfg.SweepInterval())

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           buildHandler(mux, cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("PainMap server listening", zap.String("addr", cfg.Server.Addr), zap.String("commit", cfg.Build.Commit))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildHandler wraps mux with the middleware chain. Auth runs outermost so
// the request log can attribute the user.
func buildHandler(mux http.Handler, cfg *config.Config, log *zap.Logger) http.Handler {
	h := middleware.WithDevice(mux)
	h = middleware.LocaleMiddleware(h)
	h = middleware.CachePolicy(h)
	h = middleware.SecureHeaders(h)
	h = middleware.CORS(cfg.Server.CORSOrigins)(h)
	h = middleware.RequestLogger(log.Named("http"))(h)
	return middleware.WithAuth(h)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// backendChecks collects the backends /health should reach. The in-memory
// store has nothing to ping.
func backendChecks(store api.Store, prefStore services.PreferenceStore) map[string]pinger {
	checks := map[string]pinger{}
	if p, ok := store.(pinger); ok {
		checks["store"] = p
	}
	if p, ok := prefStore.(pinger); ok {
		checks["preferences"] = p
	}
	return checks
}

func registerMeta(mux *http.ServeMux, build config.BuildInfo, checks map[string]pinger, log *zap.Logger) {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		ok := true
		status := map[string]string{}
		for _, name := range names {
			if err := checks[name].Ping(ctx); err != nil {
				log.Warn("health check failed", zap.String("backend", name), zap.Error(err))
				status[name] = "down"
				ok = false
				continue
			}
			status[name] = "up"
		}

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		locale := middleware.LocaleFromContext(r.Context())
		msg := utils.T(locale, "health.ok")
		if !ok {
			msg = utils.T(locale, "health.degraded")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         ok,
			"name":       "PainMap API",
			"locale":     locale,
			"msg":        msg,
			"checks":     status,
			"commit":     build.Commit,
			"build_time": build.BuildTime,
		})
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     build.Commit,
			"build_time": build.BuildTime,
		})
	})
}

// registerFrontend serves the static bundle when configured, otherwise
// proxies / to a dev server when one is set.
func registerFrontend(mux *http.ServeMux, fe config.FrontendConfig, log *zap.Logger) {
	if fe.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(fe.StaticDir)))
		return
	}
	if fe.DevURL == "" {
		return
	}
	u, err := url.Parse(fe.DevURL)
	if err != nil {
		log.Warn("invalid dev frontend url", zap.String("url", fe.DevURL), zap.Error(err))
		return
	}
	rp := httputil.NewSingleHostReverseProxy(u)
	rp.ModifyResponse = func(res *http.Response) error {
		res.Header.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		return nil
	}
	mux.Handle("/", rp)
}

func sweepSessions(ctx context.Context, sessions *services.SessionService, idle, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			sessions.Sweep(idle)
		}
	}
}

func logClose(log *zap.Logger, what string, fn closer) {
	if fn == nil {
		return
	}
	if err := fn(); err != nil {
		log.Warn("close failed", zap.String("resource", what), zap.Error(err))
	}
}

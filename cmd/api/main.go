package main

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	_ "github.com/PabloPavan/sniply_inject/docs"
	"github.com/PabloPavan/sniply_inject/internal/auth"
	"github.com/PabloPavan/sniply_inject/internal/config"
	"github.com/PabloPavan/sniply_inject/internal/db"
	"github.com/PabloPavan/sniply_inject/internal/dispatch"
	"github.com/PabloPavan/sniply_inject/internal/executor"
	"github.com/PabloPavan/sniply_inject/internal/httpapi"
	"github.com/PabloPavan/sniply_inject/internal/ratelimit"
	"github.com/PabloPavan/sniply_inject/internal/render"
	"github.com/PabloPavan/sniply_inject/internal/safemode"
	"github.com/PabloPavan/sniply_inject/internal/settings"
	"github.com/PabloPavan/sniply_inject/internal/snippets"
	"github.com/PabloPavan/sniply_inject/internal/telemetry"
)

const serviceName = "sniply-inject"

type snippetStore interface {
	snippets.Store
	dispatch.Store
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	upstream, err := url.Parse(cfg.UpstreamURL)
	if err != nil || upstream.Scheme == "" || upstream.Host == "" {
		log.Fatalf("invalid UPSTREAM_URL %q", cfg.UpstreamURL)
	}

	ctx := context.Background()

	if cfg.OTelEnabled {
		shutdown, err := telemetry.Init(ctx, serviceName)
		if err != nil {
			log.Fatalf("telemetry error: %v", err)
		}
		defer shutdown(context.Background())
	}
	db.InitTelemetry(serviceName)

	health := &httpapi.HealthHandler{}
	var store snippetStore
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		d, err := db.New(ctx, cfg.DatabaseURL, db.Options{MaxConns: cfg.DBMaxConns})
		if err != nil {
			log.Fatalf("db connect error: %v", err)
		}
		defer d.Close()
		base := db.NewBase(d, cfg.DBTimeout)
		if cfg.DBMigrate {
			if err := base.Migrate(ctx); err != nil {
				log.Fatalf("db migrate error: %v", err)
			}
		}
		store = snippets.NewRepository(base)
		health.DB = d
	default:
		store = snippets.NewMemoryStore()
	}

	var redisClient *redis.Client
	var settingsStore settings.Store = settings.NewMemoryStore()
	if cfg.RedisURL != "" {
		redisOpt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis url error: %v", err)
		}
		redisClient = redis.NewClient(redisOpt)
		defer redisClient.Close()
		settingsStore = settings.NewRedisStore(redisClient, cfg.RedisPrefix+"settings:")
	} else {
		log.Printf("REDIS_URL not set: settings are kept in memory and admin writes are not rate limited")
	}

	limiter := &ratelimit.Limiter{
		Client: redisClient,
		Prefix: cfg.RedisPrefix + "ratelimit:",
		Limit:  cfg.AdminRateLimit,
		Window: cfg.AdminRateWindow,
	}

	if len(cfg.AdminTokenHashes) == 0 {
		log.Printf("ADMIN_TOKEN_HASHES not set: the admin API rejects every call")
	}
	authService := &auth.Service{TokenHashes: cfg.AdminTokenHashes}

	gate := &safemode.Gate{
		Forced:            cfg.SafeMode,
		Param:             cfg.SafeModeParam,
		SuppressInjection: cfg.SafeModeSuppressesInjection,
	}
	lifecycle := &render.Lifecycle{
		Engine: &dispatch.Engine{
			Store: store,
			Executor: executor.New(executor.Options{
				Debug:     cfg.Debug,
				TempDir:   cfg.TempDir,
				PHPBinary: cfg.PHPBinary,
			}),
		},
		Injector: &settings.Injector{Store: settingsStore},
		SafeMode: gate,
	}

	app := &httpapi.App{
		Prefix:   cfg.AdminAPIPrefix,
		Health:   health,
		Snippets: &httpapi.SnippetsHandler{Service: &snippets.Service{Store: store}},
		Settings: &httpapi.SettingsHandler{
			Service:  &settings.Service{Store: settingsStore},
			SafeMode: gate,
		},
		Auth:    authService,
		Limiter: limiter,
		Site:    render.NewProxy(upstream, lifecycle, cfg.AdminPathPrefix, nil),
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("listening on :%s, proxying %s", cfg.Port, upstream.Redacted())
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

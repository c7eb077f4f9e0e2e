// Package app arma el servicio completo a partir de la config.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/keyward/internal/bootstrap"
	"github.com/dropDatabas3/keyward/internal/config"
	clientsctrl "github.com/dropDatabas3/keyward/internal/http/controllers/clients"
	healthctrl "github.com/dropDatabas3/keyward/internal/http/controllers/health"
	jwksctrl "github.com/dropDatabas3/keyward/internal/http/controllers/jwks"
	keysctrl "github.com/dropDatabas3/keyward/internal/http/controllers/keys"
	mw "github.com/dropDatabas3/keyward/internal/http/middlewares"
	"github.com/dropDatabas3/keyward/internal/http/router"
	clientssvc "github.com/dropDatabas3/keyward/internal/http/services/clients"
	healthsvc "github.com/dropDatabas3/keyward/internal/http/services/health"
	keyssvc "github.com/dropDatabas3/keyward/internal/http/services/keys"
	jwtx "github.com/dropDatabas3/keyward/internal/jwt"
	"github.com/dropDatabas3/keyward/internal/metrics"
	"github.com/dropDatabas3/keyward/internal/observability/logger"
	"github.com/dropDatabas3/keyward/internal/rate"
	"github.com/dropDatabas3/keyward/internal/store"
	"github.com/dropDatabas3/keyward/internal/util"
)

const defaultIssuer = "keyward"

// App es el servicio cableado.
type App struct {
	Config  *config.Config
	Store   store.AdapterConnection
	Keys    *jwtx.KeyManager
	Issuer  *jwtx.Issuer
	JWKS    *jwtx.JWKSCache
	Limiter rate.Limiter

	// Handler es la API. Metrics es nil si /metrics va en el mismo listener.
	Handler http.Handler
	Metrics http.Handler

	closers []func() error
}

// Options ajusta New.
type Options struct {
	Version string
	// SkipBootstrap evita EnsureActiveKey (CLIs que solo leen).
	SkipBootstrap bool
}

// New abre el store, aplica migraciones, reconcilia la clave activa y arma el router.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log := logger.From(ctx).With(logger.Component("app"))

	conn, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Store: conn}
	a.closers = append(a.closers, conn.Close)

	a.Keys = NewKeyManager(cfg, conn)
	issuer := cfg.OAuth.Issuer
	if issuer == "" {
		issuer = defaultIssuer
	}
	a.Issuer = jwtx.NewIssuer(issuer, a.Keys)

	maxKeys := cfg.OAuth.JWKSMaxKeys
	a.JWKS = jwtx.NewJWKSCache(cfg.OAuth.JWKSCacheTTL, func(ctx context.Context) (json.RawMessage, error) {
		return a.Keys.JWKSJSON(ctx, maxKeys)
	})
	a.Keys.OnRotate(func(string) { a.JWKS.Invalidate() })

	if !opts.SkipBootstrap {
		if _, err := bootstrap.EnsureActiveKey(ctx, a.Keys, bootstrap.KeysConfig{
			KeySize:       cfg.OAuth.DefaultKeySize,
			RetryAttempts: cfg.Bootstrap.StoreRetryAttempts,
			FailFast:      *cfg.Bootstrap.FailFast,
		}); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	var redisCheck func(context.Context) error
	if *cfg.Rate.Enabled {
		switch cfg.Rate.Backend {
		case "redis":
			client := rdb.NewClient(&rdb.Options{Addr: cfg.Rate.Redis.Addr, DB: cfg.Rate.Redis.DB})
			a.closers = append(a.closers, client.Close)
			a.Limiter = rate.NewRedisLimiter(client, cfg.Rate.Redis.Prefix, cfg.Rate.Limit, cfg.Rate.Window)
			redisCheck = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		default:
			a.Limiter = rate.NewWindowLimiter(cfg.Rate.Limit, cfg.Rate.Window, cfg.Rate.CleanupInterval)
		}
	}

	mcfg := metrics.Config{}
	if p, ok := conn.(metrics.PoolStatProvider); ok {
		mcfg.Pool = p
	}
	metricsHandler, err := metrics.Register(mcfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("metrics: %w", err)
	}

	deps := router.Deps{
		Controllers: router.Controllers{
			Keys: keysctrl.NewKeysController(keyssvc.NewKeyService(a.Keys)),
			Clients: clientsctrl.NewClientsController(clientssvc.NewClientService(conn.Clients(), clientssvc.Policy{
				DefaultScope:          cfg.OAuth.DefaultScope,
				SecretLength:          cfg.OAuth.SecretLength,
				DefaultAccessTokenTTL: int64(cfg.OAuth.DefaultAccessTokenTTL),
				MaxScopes:             cfg.OAuth.MaxScopes,
			})),
			JWKS: jwksctrl.NewJWKSController(a.JWKS),
			Health: healthctrl.NewHealthController(healthsvc.NewHealthService(healthsvc.Deps{
				StoreCheck: conn.Ping,
				RedisCheck: redisCheck,
				Issuer:     a.Issuer,
				Version:    opts.Version,
			})),
		},
		RateLimiter: a.Limiter,
		Admin: mw.AdminConfig{
			APIKey: cfg.Admin.APIKey,
			Header: cfg.Admin.Header,
		},
		TrustProxy:      cfg.Server.TrustProxyHeaders,
		SecurityHeaders: *cfg.Server.SecurityHeaders,
		HSTSMaxAge:      cfg.Server.HSTSMaxAge,
	}
	if *cfg.Server.EnableCORS {
		deps.CORSOrigins = cfg.Server.CORSAllowedOrigins
	}
	if cfg.Server.MetricsAddr == "" {
		deps.Metrics = metricsHandler
	} else {
		a.Metrics = metricsHandler
	}
	a.Handler = router.New(deps)

	log.Info("app ready",
		logger.Driver(conn.Name()),
		logger.String("rate_backend", cfg.Rate.Backend),
		logger.Bool("rate_enabled", *cfg.Rate.Enabled),
		logger.Bool("trust_proxy", cfg.Server.TrustProxyHeaders),
	)
	return a, nil
}

// OpenStore abre el adapter configurado y, si corresponde, aplica migraciones.
func OpenStore(ctx context.Context, cfg *config.Config) (store.AdapterConnection, error) {
	ac := store.AdapterConfig{
		Name:         cfg.Storage.Driver,
		DSN:          cfg.Storage.DSN,
		MaxOpenConns: cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Storage.Postgres.MaxIdleConns,
	}
	if cfg.Storage.Driver == "mongo" {
		if cfg.Storage.Mongo.URI != "" {
			ac.DSN = cfg.Storage.Mongo.URI
		}
		ac.Database = cfg.Storage.Mongo.Database
	}

	conn, err := store.OpenAdapter(ctx, ac)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	logger.From(ctx).Info("store opened",
		logger.Component("app"),
		logger.Driver(conn.Name()),
		logger.String("dsn", util.MaskDSN(ac.DSN)),
	)
	if *cfg.Storage.AutoMigrate {
		if err := store.Migrate(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

// NewKeyManager crea el KeyManager con los defaults de la config.
func NewKeyManager(cfg *config.Config, conn store.AdapterConnection) *jwtx.KeyManager {
	return jwtx.NewKeyManager(conn.Keys(), jwtx.KeyManagerOptions{
		DefaultKeySize: cfg.OAuth.DefaultKeySize,
		Algorithm:      cfg.OAuth.DefaultAlgorithm,
	})
}

// Close libera store y clientes externos en orden inverso.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

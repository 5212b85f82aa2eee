package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/baechuer/bridge-auth/internal/application/auth"
	"github.com/baechuer/bridge-auth/internal/audit"
	"github.com/baechuer/bridge-auth/internal/config"
	"github.com/baechuer/bridge-auth/internal/infrastructure/db/postgres"
	"github.com/baechuer/bridge-auth/internal/infrastructure/identity"
	"github.com/baechuer/bridge-auth/internal/infrastructure/memory"
	rabbitmq_pub "github.com/baechuer/bridge-auth/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/bridge-auth/internal/infrastructure/mongo"
	"github.com/baechuer/bridge-auth/internal/infrastructure/redis"
	"github.com/baechuer/bridge-auth/internal/infrastructure/security"
	"github.com/baechuer/bridge-auth/internal/logger"
	http_handlers "github.com/baechuer/bridge-auth/internal/transport/http/handlers"
	"github.com/baechuer/bridge-auth/internal/transport/http/middleware"
	"github.com/baechuer/bridge-auth/internal/transport/http/response"
	"github.com/baechuer/bridge-auth/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

// CredentialStore is one backend serving both user records and the
// password reset log.
type CredentialStore interface {
	auth.UserStore
	auth.ResetLog
	Ping(ctx context.Context) error
}

type Publisher interface {
	auth.EmailSender
	auth.SMSSender
	Close() error
}

type Deps struct {
	LoadConfig func() (*config.Config, error)

	// OpenStore returns the configured credential store and its cleanup.
	OpenStore func(ctx context.Context, cfg *config.Config) (CredentialStore, func(), error)

	NewRedis func(addr, password string, db int) *redis.Client

	NewPublisher func(cfg rabbitmq_pub.Config) (Publisher, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	lg := logger.Logger

	// 1) credential store
	store, closeStore, err := deps.OpenStore(context.Background(), cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s credential store: %w", cfg.CredentialStore, err)
	}
	cleanupFns := []func(){closeStore}
	lg.Info().Str("backend", cfg.CredentialStore).Msg("credential store ready")

	// 2) redis (best-effort in dev)
	var redisCli *redis.Client
	if cfg.RedisAddr != "" && deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := c.Ping(context.Background()); err != nil {
			_ = c.Close()
			if !cfg.IsDev() {
				runCleanup(cleanupFns)
				return nil, nil, fmt.Errorf("redis unavailable: %w", err)
			}
			lg.Warn().Err(err).Msg("redis unavailable; identity provider state kept in memory")
		} else {
			lg.Info().Msg("redis connected")
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	// 3) identity provider backing stores
	var accounts identity.AccountRegistry
	var resetTokens identity.ResetTokenStore
	if redisCli != nil {
		accounts = redis.NewAccountRegistry(redisCli)
		resetTokens = redis.NewOneTimeTokenStore(redisCli)
	} else {
		accounts = memory.NewAccountRegistry()
		resetTokens = memory.NewOneTimeTokenStore()
	}

	// 4) notification senders
	var email auth.EmailSender
	var sms auth.SMSSender
	pub, err := openPublisher(deps, cfg)
	switch {
	case err == nil:
		email, sms = pub, pub
		cleanupFns = append(cleanupFns, func() { _ = pub.Close() })
	case cfg.IsDev():
		lg.Warn().Err(err).Msg("rabbitmq unavailable; notifications go to the log")
		ls := memory.NewLogSender(lg)
		email, sms = ls, ls
	default:
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 5) security + identity provider
	lg.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing bearer token signer")
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	signer := security.NewBearerSigner(cfg.JWTSecret, cfg.JWTIssuer, cfg.BearerTokenTTL)
	idp := identity.NewProvider(accounts, resetTokens, hasher, signer, identity.Config{
		ResetBaseURL:  cfg.PasswordResetBaseURL,
		ResetTokenTTL: cfg.PasswordResetTokenTTL,
	})

	// 6) service
	authSvc := auth.NewService(store, store, idp, email, sms, auth.Config{
		ReturnResetLink: cfg.ReturnResetLink,
	}).WithAudit(audit.New(lg).Record)

	// 7) handlers + middleware
	authH := http_handlers.NewAuthHandler(authSvc)
	usersH := http_handlers.NewUsersHandler(authSvc, cfg.ExposeUserList)
	healthH := http_handlers.NewHealthHandler(store)

	var limiter middleware.RateLimiter
	if cfg.RateLimitEnabled {
		if redisCli != nil {
			limiter = redis.NewFixedWindowLimiter(redisCli)
		} else {
			lg.Warn().Msg("rate limiting enabled but redis is unavailable; limits not enforced")
		}
	}
	rl := func(key string, limit int) router.Middleware {
		if limiter == nil {
			return nil
		}
		return middleware.RateLimitFixedWindow(limiter, middleware.FixedWindowConfig{
			RouteKey: key,
			Limit:    limit,
			Window:   time.Minute,
		}, response.WriteError)
	}
	perMinute := cfg.RateLimitPerMinute

	// 8) router
	mux, err := deps.NewRouter(router.Deps{
		Health: healthH,
		Auth:   authH,
		Users:  usersH,

		RequestIDMW: middleware.RequestID,
		MetricsMW:   middleware.Metrics,
		CORSMW:      middleware.CORS(cfg.CORSOrigins),

		RLSignUp:         rl("signup", perMinute),
		RLLogin:          rl("login", perMinute),
		RLVerify:         rl("verify", perMinute),
		RLForgotPassword: rl("forgot_password", max(1, perMinute/6)),
		RLResetPassword:  rl("reset_password", max(1, perMinute/6)),
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 9) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() { runCleanup(cleanupFns) })
	}

	return srv, cleanup, nil
}

func openPublisher(deps Deps, cfg *config.Config) (Publisher, error) {
	if cfg.RabbitURL == "" {
		return nil, errors.New("RABBIT_URL not set")
	}
	if deps.NewPublisher == nil {
		return nil, errors.New("no publisher constructor")
	}
	return deps.NewPublisher(rabbitmq_pub.Config{
		URL:       cfg.RabbitURL,
		Exchange:  cfg.RabbitExchange,
		EmailFrom: cfg.EmailFrom,
		SMSFrom:   cfg.SMSFrom,
	})
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		OpenStore:  openStore,
		NewRedis:   redis.New,
		NewPublisher: func(c rabbitmq_pub.Config) (Publisher, error) {
			return rabbitmq_pub.NewPublisher(c)
		},
		NewRouter: router.New,
	}
}

func openStore(ctx context.Context, cfg *config.Config) (CredentialStore, func(), error) {
	switch cfg.CredentialStore {
	case config.StoreMongo:
		client, err := mongo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }

		store := mongo.NewStore(client.Database(cfg.MongoDatabase))
		if err := store.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		return store, closeFn, nil

	case config.StorePostgres:
		db, err := postgres.Open(cfg.DBAddr, cfg.DBDebug, logger.Logger)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = db.Close() }

		if err := postgres.Migrate(ctx, db); err != nil {
			closeFn()
			return nil, nil, err
		}
		return postgres.NewUserRepo(db), closeFn, nil

	case config.StoreMemory:
		return memory.NewUserStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown credential store %q", cfg.CredentialStore)
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

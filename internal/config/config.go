package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	//App
	Env string // dev / staging / prod
	//HTTP
	HTTPAddr         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	CORSOrigins      []string

	// Credential store
	CredentialStore string // mongo | postgres | memory
	MongoURI        string
	MongoDatabase   string
	DBAddr          string
	DBDebug         bool

	// Identity provider backing (Redis) and notifications (RabbitMQ).
	// Both may be empty in dev; bootstrap falls back to in-process versions.
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RabbitURL      string
	RabbitExchange string
	EmailFrom      string
	SMSFrom        string

	//Auth / Security
	JWTSecret             string
	JWTIssuer             string
	BearerTokenTTL        time.Duration
	BcryptCost            int
	PasswordResetBaseURL  string
	PasswordResetTokenTTL time.Duration

	// Behaviour toggles
	ReturnResetLink    bool
	ExposeUserList     bool
	RateLimitEnabled   bool
	RateLimitPerMinute int
}

func (c *Config) IsDev() bool { return c.Env == "dev" }

// LoadDotEnv reads an optional .env file; a missing file is not an error.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:             getEnv("ENV", "dev"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		CredentialStore: strings.ToLower(getEnv("CREDENTIAL_STORE", StoreMongo)),
		MongoURI:        os.Getenv("MONGO_URI"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "bridge_auth"),
		DBAddr:          os.Getenv("DB_ADDR"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RabbitURL:       os.Getenv("RABBIT_URL"),
		RabbitExchange:  getEnv("RABBIT_EXCHANGE", "notify.events"),
		EmailFrom:       os.Getenv("EMAIL_FROM"),
		SMSFrom:         os.Getenv("SMS_FROM"),
		JWTIssuer:       getEnv("JWT_ISSUER", "bridge-auth"),
		CORSOrigins:     getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	// required values
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required env var: JWT_SECRET")
	}

	// Must include `token=` because the provider appends the token.
	cfg.PasswordResetBaseURL = os.Getenv("PASSWORD_RESET_BASE_URL")
	if cfg.PasswordResetBaseURL == "" {
		return nil, fmt.Errorf("missing required env var: PASSWORD_RESET_BASE_URL")
	}
	if !strings.Contains(cfg.PasswordResetBaseURL, "token=") {
		return nil, fmt.Errorf("PASSWORD_RESET_BASE_URL must contain `token=`")
	}

	switch cfg.CredentialStore {
	case StoreMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("missing required env var: MONGO_URI (CREDENTIAL_STORE=mongo)")
		}
		if !strings.HasPrefix(cfg.MongoURI, "mongodb://") && !strings.HasPrefix(cfg.MongoURI, "mongodb+srv://") {
			return nil, fmt.Errorf("MONGO_URI must start with mongodb:// or mongodb+srv://")
		}
	case StorePostgres:
		if cfg.DBAddr == "" {
			return nil, fmt.Errorf("missing required env var: DB_ADDR (CREDENTIAL_STORE=postgres)")
		}
		if !strings.HasPrefix(cfg.DBAddr, "postgres://") && !strings.HasPrefix(cfg.DBAddr, "postgresql://") {
			return nil, fmt.Errorf("DB_ADDR must start with postgres:// or postgresql://")
		}
	case StoreMemory:
		if !cfg.IsDev() {
			return nil, fmt.Errorf("CREDENTIAL_STORE=memory is only allowed with ENV=dev")
		}
	default:
		return nil, fmt.Errorf("invalid CREDENTIAL_STORE %q (want mongo|postgres|memory)", cfg.CredentialStore)
	}

	// Outside dev the service cannot run without its backing services.
	if !cfg.IsDev() {
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("missing required env var: REDIS_ADDR")
		}
		if cfg.RabbitURL == "" {
			return nil, fmt.Errorf("missing required env var: RABBIT_URL")
		}
	}

	var err error
	if cfg.DBDebug, err = getBool("DB_DEBUG", false); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 0); err != nil {
		return nil, err
	}
	if cfg.BearerTokenTTL, err = getDuration("BEARER_TOKEN_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.PasswordResetTokenTTL, err = getDuration("PASSWORD_RESET_TOKEN_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.ReturnResetLink, err = getBool("RETURN_RESET_LINK", cfg.IsDev()); err != nil {
		return nil, err
	}
	if cfg.ExposeUserList, err = getBool("EXPOSE_USER_LIST", true); err != nil {
		return nil, err
	}
	if cfg.RateLimitEnabled, err = getBool("RATE_LIMIT_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 30); err != nil {
		return nil, err
	}

	//Timeout values are optional and have a default value if not
	if cfg.HTTPReadTimeout, err = getDuration("HTTP_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPIdleTimeout, err = getDuration("HTTP_IDLE_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid bool for %s: %q: %w", key, v, err)
	}
	return b, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q: %w", key, v, err)
	}
	return n, nil
}

func getList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

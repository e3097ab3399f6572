package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Store backends selectable at startup. There is no runtime fallback
// between them.
const (
	StoreBackendMemory   = "memory"
	StoreBackendPostgres = "postgres"
)

type Config struct {
	Server      ServerConfig      `env:",prefix=SERVER_"`
	Store       StoreConfig       `env:",prefix=STORE_"`
	Postgres    PostgresConfig    `env:",prefix=POSTGRES_"`
	Redis       RedisConfig       `env:",prefix=REDIS_"`
	TikTok      TikTokConfig      `env:",prefix=TIKTOK_"`
	OAuth       OAuthConfig       `env:",prefix=OAUTH_"`
	Security    SecurityConfig    `env:",prefix="`
	Identity    IdentityConfig    `env:",prefix=IDENTITY_"`
	UserService UserServiceConfig `env:",prefix=USER_SERVICE_"`
	CORS        CORSConfig        `env:",prefix=CORS_"`
	Env         string            `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type StoreConfig struct {
	Backend       string `env:"BACKEND,default=memory"`
	MigrationsURL string `env:"MIGRATIONS_URL,default=file://migrations"`
}

type PostgresConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=social_auth"`
	Password string `env:"PASSWORD,default=social_auth_password"`
	DBName   string `env:"DB,default=social_auth_db"`
	SSLMode  string `env:"SSLMODE,default=disable"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

// TikTokConfig carries the provider credentials. The endpoint overrides are
// empty in production and point at stub servers in acceptance tests.
type TikTokConfig struct {
	ClientID     string   `env:"CLIENT_ID,required"`
	ClientSecret string   `env:"CLIENT_SECRET,required"`
	RedirectURL  string   `env:"REDIRECT_URL,default=http://localhost:8080/auth/tiktok/callback"`
	Timeout      Duration `env:"TIMEOUT,default=10s"`

	AuthorizeURL   string `env:"AUTHORIZE_URL,default="`
	TokenURL       string `env:"TOKEN_URL,default="`
	UserInfoURL    string `env:"USER_INFO_URL,default="`
	VideoListURL   string `env:"VIDEO_LIST_URL,default="`
	PublishInitURL string `env:"PUBLISH_INIT_URL,default="`
}

type OAuthConfig struct {
	StateSecret   string   `env:"STATE_SECRET,required"`
	StateTTL      Duration `env:"STATE_TTL,default=10m"`
	WebSuccessURL string   `env:"WEB_SUCCESS_URL,default=https://star3.ai/createproduct?icon=tiktok"`
	AppSuccessURL string   `env:"APP_SUCCESS_URL,default=star3ai://tiktok-login-success"`
	WebErrorURL   string   `env:"WEB_ERROR_URL,default=https://star3.ai/createproduct?icon=tiktok"`
	AppErrorURL   string   `env:"APP_ERROR_URL,default=star3ai://tiktok-login-error"`
}

type SecurityConfig struct {
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

// IdentityConfig controls the identity stub. The default identity is a
// documented test placeholder used when the caller supplies none; a
// verified identity is expected from the surrounding system.
type IdentityConfig struct {
	Default string `env:"DEFAULT,default=test@example.com"`
}

// UserServiceConfig points at the internal create-OAuth-user collaborator.
// An empty URL disables the notification.
type UserServiceConfig struct {
	CreateUserURL string   `env:"CREATE_USER_URL,default="`
	Timeout       Duration `env:"TIMEOUT,default=10s"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization,X-User-Email"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// URL returns the PostgreSQL connection URL used by the migration runner
func (p PostgresConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(config.OAuth.StateSecret) < 32 {
		return nil, fmt.Errorf("OAUTH_STATE_SECRET must be at least 32 characters long")
	}

	switch config.Store.Backend {
	case StoreBackendMemory, StoreBackendPostgres:
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q",
			StoreBackendMemory, StoreBackendPostgres, config.Store.Backend)
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}

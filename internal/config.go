package internal

import (
	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/anvil/pkg/logger"
	"github.com/dmitrymomot/anvil/pkg/redis"
)

// Config is the environment-driven application configuration.
type Config struct {
	Env            string   `env:"APP_ENV" envDefault:"development"`
	RoutesFile     string   `env:"ROUTES_FILE" envDefault:"routes.yaml"`
	CookieSecret   string   `env:"COOKIE_SECRET"`
	DefaultLayout  string   `env:"DEFAULT_LAYOUT" envDefault:"main"`
	TrustedOrigins []string `env:"TRUSTED_ORIGINS" envSeparator:","`
	BuildTimestamp int64    `env:"BUILD_TIMESTAMP"`
	MaxEmbedDepth  int      `env:"MAX_EMBED_DEPTH" envDefault:"16"`

	Logger logger.Config
	Redis  redis.Config
}

// LoadConfig parses Config from the process environment.
func LoadConfig() (Config, error) {
	return env.ParseAs[Config]()
}

// IsProduction reports whether the app runs in the production environment.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

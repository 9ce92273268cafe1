package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const placeholderSecret = "your-very-strong-access-secret"

type Config struct {
	App struct {
		Env      string `env:"APP_ENV"   envDefault:"development"`
		Port     string `env:"PORT"      envDefault:"8088"`
		LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

		// TimeZone is the zone match dates and times are written in.
		TimeZone       string   `env:"TIME_ZONE"       envDefault:"UTC"`
		AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	}
	DB struct {
		Host     string `env:"DB_HOST"     envDefault:"localhost"`
		Port     string `env:"DB_PORT"     envDefault:"5432"`
		User     string `env:"DB_USER"     envDefault:"postgres"`
		Password string `env:"DB_PASSWORD" envDefault:"password"`
		Name     string `env:"DB_NAME"     envDefault:"padel_db"`
		SSLMode  string `env:"DB_SSLMODE"  envDefault:"disable"`
	}
	JWT struct {
		AccessTokenSecret string        `env:"JWT_ACCESS_TOKEN_SECRET" envDefault:"your-very-strong-access-secret"`
		AccessTokenExpiry time.Duration `env:"JWT_ACCESS_TOKEN_EXPIRY" envDefault:"24h"`
	}
	Redis struct {
		// URL enables the distributed sweep lock when set.
		URL     string        `env:"REDIS_URL"`
		LockTTL time.Duration `env:"REDIS_LOCK_TTL" envDefault:"1m"`
	}
	Weather struct {
		APIKey   string        `env:"WEATHER_API_KEY"`
		BaseURL  string        `env:"WEATHER_BASE_URL"  envDefault:"https://api.openweathermap.org/data/2.5"`
		Timeout  time.Duration `env:"WEATHER_TIMEOUT"   envDefault:"5s"`
		CacheTTL time.Duration `env:"WEATHER_CACHE_TTL" envDefault:"30m"`
	}
	Realtime struct {
		PingInterval     time.Duration `env:"WS_PING_INTERVAL"     envDefault:"30s"`
		WriteTimeout     time.Duration `env:"WS_WRITE_TIMEOUT"     envDefault:"10s"`
		OperationTimeout time.Duration `env:"WS_OPERATION_TIMEOUT" envDefault:"5s"`
		SendBuffer       int           `env:"WS_SEND_BUFFER"       envDefault:"64"`
		MaxMessageBytes  int64         `env:"WS_MAX_MESSAGE_BYTES" envDefault:"8192"`
	}
	Sweeper struct {
		Interval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
		Enabled  bool          `env:"SWEEP_ENABLED"  envDefault:"true"`
	}
}

// LoadConfig reads a .env file when present, then the process environment.
func LoadConfig(log zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, eris.Wrap(err, "failed to parse environment variables")
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if cfg.Sweeper.Interval <= 0 {
		return nil, eris.Errorf("SWEEP_INTERVAL must be positive, got %s", cfg.Sweeper.Interval)
	}

	if cfg.JWT.AccessTokenSecret == placeholderSecret {
		log.Warn().Msg("using the default JWT secret, set JWT_ACCESS_TOKEN_SECRET for production")
	}
	if cfg.DB.Password == "password" && cfg.IsProduction() {
		log.Warn().Msg("using the default DB password in production, set DB_PASSWORD")
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Location resolves App.TimeZone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.TimeZone)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid TIME_ZONE %q", c.App.TimeZone)
	}
	return loc, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DB.Host,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.Port,
		c.DB.SSLMode,
		c.App.TimeZone,
	)
}

// NewLogger builds the root logger: human readable in development, JSON
// otherwise.
func NewLogger(appEnv, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	var l zerolog.Logger
	if appEnv == "development" {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		l = zerolog.New(os.Stderr)
	}
	return l.Level(lvl).With().Timestamp().Logger()
}

// ConnectDB opens the Postgres connection described by cfg.
func ConnectDB(cfg *Config, log zerolog.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{TranslateError: true}
	if cfg.App.Env == "development" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info) // Log SQL queries in development
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, eris.Wrap(err, "failed to connect to database")
	}
	log.Info().Str("host", cfg.DB.Host).Str("db", cfg.DB.Name).Msg("connected to database")
	return db, nil
}

package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/lightera/bundokai/pkg/logger"
	"github.com/pkg/errors"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every environment-backed setting of the service. Only this
// struct must be used to read configuration values, no direct access to
// env, ini or any other config source should be made.
type Config struct {
	AppEnv              string `env:"APP_ENV" default:"dev"`
	AppName             string `env:"APP_NAME" default:"bundokai_checkin"`
	AppDebug            bool   `env:"APP_DEBUG" default:"1"`
	AppDebugMetricsAddr string `env:"APP_DEBUG_METRIC_ADDR"`
	AppDebugMetricsURI  string `env:"APP_DEBUG_METRIC_URI"`
	AppBaseUrl          string `env:"APP_BASE_URL"`

	HttpListenAddr         string `env:"HTTP_LISTEN_ADDR" validation:"mustExists"`
	HttpServerReadTimeout  int    `env:"HTTP_SERVER_READ_TIMEOUT"`
	HttpServerWriteTimeout int    `env:"HTTP_SERVER_WRITE_TIMEOUT"`
	CorsAllowOrigin        string `env:"CORS_ALLOW_ORIGIN" default:"*"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX"`

	PromNamespace string `env:"PROM_NAMESPACE"`

	LogLevel string `env:"LOG_LEVEL"`

	// Admin auth. AdminPasswordHash is a bcrypt hash, never the plain password.
	AdminUsername     string        `env:"ADMIN_USERNAME" default:"lightera"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	JwtSecret         string        `env:"JWT_SECRET"`
	JwtTTL            time.Duration `env:"JWT_TTL" default:"8h"`

	SmtpHost     string `env:"SMTP_SERVER" default:"smtp.gmail.com"`
	SmtpPort     int    `env:"SMTP_PORT" default:"587"`
	SmtpUsername string `env:"SMTP_USERNAME"`
	SmtpPassword string `env:"SMTP_PASSWORD"`
	SmtpFrom     string `env:"SMTP_FROM"`

	// Batch mailer pacing. Rate is emails per second across the whole run.
	MailerBatchSize   int     `env:"MAILER_BATCH_SIZE" default:"10"`
	MailerRatePerSec  float64 `env:"MAILER_RATE_PER_SEC" default:"1"`
	MailerWorkerCount int     `env:"MAILER_WORKER_COUNT" default:"4"`
	MailerDryRun      bool    `env:"MAILER_DRY_RUN"`
	MailerDepartment  string  `env:"MAILER_DEPARTMENT"`

	// Optional dev relay instead of direct SMTP (see cmd/relay).
	RelayPrimaryUrl   string `env:"RELAY_PRIMARY_URL"`
	RelaySecondaryUrl string `env:"RELAY_SECONDARY_URL"`

	StatsCacheTTL time.Duration `env:"STATS_CACHE_TTL" default:"5s"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.New("failed to load configuration file " + path + " error: " + err.Error())
		}
	}

	_, err = env.UnmarshalFromEnviron(c)

	if err != nil {
		return errors.New("failed to map env variables to Configuration object " + " error: " + err.Error())
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}

// Set replaces the loaded configuration. Tests use it to inject settings
// without touching the process environment.
func Set(c *Config) {
	config = c
}

package config

import (
	"os"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/kisanpay/kisanpay/internal/queue"
	xhttp "github.com/kisanpay/kisanpay/pkg/http"
	"github.com/kisanpay/kisanpay/pkg/logger"
	"github.com/kisanpay/kisanpay/pkg/pg"
	"github.com/kisanpay/kisanpay/pkg/redis"
	"github.com/pkg/errors"
)

var config *Config

// Config holds every setting the binaries read. Values come from the
// environment, optionally seeded from a .env file. Nothing else should read
// os.Getenv directly.
type Config struct {
	AppEnv   string `env:"APP_ENV,default=dev"`
	AppName  string `env:"APP_NAME,default=kisanpay"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	HttpListenAddr         string        `env:"HTTP_LISTEN_ADDR,default=:8080"`
	HttpServerReadTimeout  time.Duration `env:"HTTP_SERVER_READ_TIMEOUT,default=10s"`
	HttpServerWriteTimeout time.Duration `env:"HTTP_SERVER_WRITE_TIMEOUT,default=10s"`
	RequestTimeout         time.Duration `env:"REQUEST_TIMEOUT,default=5s"`
	HttpMaxBodySize        int           `env:"HTTP_MAX_BODY_SIZE,default=1048576"`
	HttpMaxConnsPerIP      int           `env:"HTTP_MAX_CONNS_PER_IP,default=10000"`
	AdminListenAddr        string        `env:"ADMIN_LISTEN_ADDR,default=:8081"`
	MetricsListenAddr      string        `env:"METRICS_LISTEN_ADDR,default=:9100"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST,default=localhost"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT,default=5432"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER,default=kisanpay"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME,default=kisanpay"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST,default=localhost"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT,default=5432"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER,default=kisanpay"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME,default=kisanpay"`
	PostgresSSLMode       string `env:"POSTGRES_SSLMODE,default=disable"`

	RedisAddr               string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE,default=0"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX,default=kisanpay:"`

	PromNamespace string `env:"PROM_NAMESPACE,default=kisanpay"`

	QueueName              string        `env:"QUEUE_NAME,default=ledger-events"`
	QueueConsumerGroup     string        `env:"QUEUE_CONSUMER_GROUP,default=billing"`
	QueueConsumerName      string        `env:"QUEUE_CONSUMER_NAME,default=billing"`
	QueueConsumers         int           `env:"QUEUE_CONSUMERS,default=2"`
	QueueWorkers           int           `env:"QUEUE_WORKERS,default=16"`
	QueueMaxRetries        int           `env:"QUEUE_MAX_RETRIES,default=5"`
	QueueVisibilityTimeout time.Duration `env:"QUEUE_VISIBILITY_TIMEOUT,default=30s"`
	QueuePollInterval      time.Duration `env:"QUEUE_POLL_INTERVAL,default=1s"`
	QueueBatchSize         int64         `env:"QUEUE_BATCH_SIZE,default=50"`
	QueueMaxLen            int64         `env:"QUEUE_MAX_LEN,default=100000"`
	QueueEnableDLQ         bool          `env:"QUEUE_ENABLE_DLQ,default=true"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		err = godotenv.Load(path)
		if err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	_, err = env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.Wrap(err, "failed to map env variables to Config")
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

// Set replaces the loaded configuration. Tests use it to avoid the environment.
func Set(c *Config) {
	config = c
}

func (c *Config) IsDev() bool {
	return c.AppEnv == "dev"
}

func (c *Config) Logger() logger.Options {
	return logger.Options{Production: !c.IsDev(), Level: c.LogLevel}
}

func (c *Config) HTTPLimits() xhttp.Limits {
	return xhttp.Limits{
		ReadTimeout:        c.HttpServerReadTimeout,
		WriteTimeout:       c.HttpServerWriteTimeout,
		MaxRequestBodySize: c.HttpMaxBodySize,
		MaxConnsPerIP:      c.HttpMaxConnsPerIP,
	}
}

func (c *Config) PostgresRead() pg.Config {
	return pg.Config{
		User:     c.PostgresReadUser,
		Host:     c.PostgresReadHost,
		Port:     c.PostgresReadPort,
		Password: c.PostgresReadPassword,
		Database: c.PostgresReadDatabase,
		SSLMode:  c.PostgresSSLMode,
	}
}

func (c *Config) PostgresWrite() pg.Config {
	return pg.Config{
		User:     c.PostgresWriteUser,
		Host:     c.PostgresWriteHost,
		Port:     c.PostgresWritePort,
		Password: c.PostgresWritePassword,
		Database: c.PostgresWriteDatabase,
		SSLMode:  c.PostgresSSLMode,
	}
}

func (c *Config) Redis() *redis.Options {
	return &redis.Options{
		Addrs:      []string{c.RedisAddr},
		ClientName: c.AppName,
		DB:         c.RedisDatabase,
		Username:   c.RedisUsername,
		Password:   c.RedisPassword,
	}
}

// LedgerQueue is the stream ledger events are published on and billed from.
func (c *Config) LedgerQueue() queue.QueueConfig {
	return queue.QueueConfig{
		Name:              c.QueueName,
		ConsumerGroup:     c.QueueConsumerGroup,
		ConsumerName:      c.QueueConsumerName,
		MaxRetries:        c.QueueMaxRetries,
		VisibilityTimeout: c.QueueVisibilityTimeout,
		PollInterval:      c.QueuePollInterval,
		BatchSize:         c.QueueBatchSize,
		MaxLen:            c.QueueMaxLen,
		EnableDLQ:         c.QueueEnableDLQ,
	}
}

// EnvPathFromArgs returns the file named by a --env=path argument, if it exists.
func EnvPathFromArgs(args []string) string {
	for _, v := range args {
		if strings.HasPrefix(v, "--env=") {
			p := strings.TrimPrefix(v, "--env=")
			if _, err := os.Stat(p); err != nil {
				logger.Error("failed to open the passed env file", "path", p, "error", err)
				return ""
			}
			return p
		}
	}
	return ""
}

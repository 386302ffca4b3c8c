package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"wfconsole/internal/entity"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

type (
	Config struct {
		App      App      `env-prefix:"APP_"`
		Logger   Logger   `env-prefix:"LOGGER_"`
		Postgres Postgres `env-prefix:"DB_"`
		HTTP     HTTP     `env-prefix:"HTTP_"`
		Cache    Cache    `env-prefix:"CACHE_"`
		Redis    Redis    `env-prefix:"REDIS_"`
		OTP      OTP      `env-prefix:"OTP_"`
		SMS      SMS      `env-prefix:"SMS_"`
		Payment  Payment  `env-prefix:"PAYMENT_"`
		Events   Events   `env-prefix:"EVENTS_"`
		Metrics  Metrics  `env-prefix:"METRICS_"`
		Env      string   `                       env:"ENV" env-default:"local" validate:"oneof=local dev staging prod"`
	}

	App struct {
		Name    string `env:"NAME"    validate:"required"`
		Version string `env:"VERSION" validate:"required"`
	}

	Postgres struct {
		Host           string        `env:"HOST"             validate:"required"`
		Port           string        `env:"PORT"             validate:"required,gte=1,lte=65535"`
		Name           string        `env:"NAME"             validate:"required"`
		User           string        `env:"USER"             validate:"required"`
		Password       string        `env:"PASSWORD"         validate:"required"`
		SSLMode        string        `env:"SSL_MODE"         validate:"required"`
		PoolMax        int32         `env:"POOL_MAX"         validate:"min=1,max=100"                             env-default:"20"`
		ConnAttempts   int           `env:"CONN_ATTEMPTS"    validate:"min=1,max=10"                              env-default:"5"`
		BaseRetryDelay time.Duration `env:"BASE_RETRY_DELAY" validate:"gte=10ms,lte=10s"                          env-default:"100ms"`
		MaxRetryDelay  time.Duration `env:"MAX_RETRY_DELAY"  validate:"gte=100ms,lte=30s,gtefield=BaseRetryDelay" env-default:"5s"`
	}

	HTTP struct {
		Host              string        `env:"HOST"                validate:"required"                 env-default:"0.0.0.0"`
		Port              string        `env:"PORT"                validate:"required,gte=1,lte=65535" env-default:"8080"`
		ReadTimeout       time.Duration `env:"READ_TIMEOUT"        validate:"gte=10ms,lte=30s"         env-default:"5s"`
		WriteTimeout      time.Duration `env:"WRITE_TIMEOUT"       validate:"gte=10ms,lte=30s"         env-default:"5s"`
		IdleTimeout       time.Duration `env:"IDLE_TIMEOUT"        validate:"gte=10ms,lte=30s"         env-default:"60s"`
		ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT"    validate:"gte=10ms,lte=30s"         env-default:"10s"`
		ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" validate:"gte=10ms,lte=30s"         env-default:"5s"`
	}

	Cache struct {
		Capacity        int           `env:"CAPACITY"         validate:"required,min=1,max=1000000" env-default:"10000"`
		CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" validate:"gt=0s,lte=24h"              env-default:"30s"`
	}

	Redis struct {
		Addr     string `env:"ADDR"`
		Password string `env:"PASSWORD"`
		DB       int    `env:"DB"       validate:"gte=0,lte=15" env-default:"0"`
	}

	OTP struct {
		TTL         time.Duration `env:"TTL"          validate:"required,gt=0s,lte=1h"    env-default:"5m"`
		MaxAttempts int           `env:"MAX_ATTEMPTS" validate:"required,min=1,max=10"    env-default:"3"`
		Store       string        `env:"STORE"        validate:"oneof=memory redis"       env-default:"memory"`
		DemoMode    bool          `env:"DEMO_MODE"    env-default:"false"`
	}

	SMS struct {
		BaseURL  string        `env:"BASE_URL"`
		SenderID string        `env:"SENDER_ID" env-default:"WFMCON"`
		APIKey   string        `env:"API_KEY"`
		Timeout  time.Duration `env:"TIMEOUT"   validate:"gte=100ms,lte=30s" env-default:"5s"`
	}

	// Payment values are deliberately not required at load time: the
	// orchestrator gates on them per request and reports which are absent.
	Payment struct {
		MerchantKey   string        `env:"MERCHANT_KEY"`
		GatewayURL    string        `env:"GATEWAY_URL"    env-default:"https://secure.payu.in/_payment"`
		SuccessURL    string        `env:"SUCCESS_URL"`
		FailureURL    string        `env:"FAILURE_URL"`
		SignerBaseURL string        `env:"SIGNER_BASE_URL"`
		SignerTimeout time.Duration `env:"SIGNER_TIMEOUT" validate:"gte=100ms,lte=30s" env-default:"10s"`
	}

	Events struct {
		Enabled      bool          `env:"ENABLED"       env-default:"false"`
		Brokers      []string      `env:"BROKERS"       validate:"required_if=Enabled true,omitempty,min=1,dive,hostname_port" env-separator:","`
		Topic        string        `env:"TOPIC"         validate:"required_if=Enabled true"`
		BatchSize    int           `env:"BATCH_SIZE"    validate:"min=1,max=1000"           env-default:"100"`
		BatchTimeout time.Duration `env:"BATCH_TIMEOUT" validate:"gte=1ms,lte=30s"          env-default:"1s"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT" validate:"gte=1ms,lte=30s"          env-default:"2s"`
	}

	Metrics struct {
		Host              string        `env:"HOST"                validate:"required"                 env-default:"0.0.0.0"`
		Port              string        `env:"PORT"                validate:"required,gte=1,lte=65535" env-default:"9090"`
		ReadTimeout       time.Duration `env:"READ_TIMEOUT"        validate:"gte=10ms,lte=30s"         env-default:"5s"`
		WriteTimeout      time.Duration `env:"WRITE_TIMEOUT"       validate:"gte=10ms,lte=30s"         env-default:"5s"`
		ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" validate:"gte=10ms,lte=30s"         env-default:"5s"`
	}

	Logger struct {
		Level      string `env:"LEVEL"       env-default:"info"                       validate:"oneof=debug info warn error"`
		Filename   string `env:"FILENAME"    env-default:"./logs/console-service.log"`
		MaxSize    int    `env:"MAX_SIZE"    env-default:"100"                        validate:"min=1,max=1000"`
		MaxBackups int    `env:"MAX_BACKUPS" env-default:"3"                          validate:"min=0,max=20"`
		MaxAge     int    `env:"MAX_AGE"     env-default:"28"                         validate:"min=1,max=365"`
	}
)

func Load() (*Config, error) {
	path := fetchConfigPath()
	if path == "" {
		return nil, entity.ErrConfigPathNotSet
	}
	return LoadPath(path)
}

func LoadPath(configPath string) (*Config, error) {
	const op = "config.LoadPath"

	validate := validator.New()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: config file does not exist: %s", op, configPath)
	} else if err != nil {
		return nil, fmt.Errorf("%s: checking config file: %w", op, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: read config: %w", op, err)
	}

	if err := validateConfig(validate, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func validateConfig(validate *validator.Validate, cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		var validationErrors []string
		for _, ve := range validationErrs {
			validationErrors = append(validationErrors,
				fmt.Sprintf("%s=%v must satisfy '%s'", ve.Field(), ve.Value(), ve.Tag()))
		}
		return fmt.Errorf("config validation: %v", strings.Join(validationErrors, "; "))
	}
	return fmt.Errorf("config validation: %w", err)
}

func fetchConfigPath() string {
	var path string
	flag.StringVar(&path, "config", "", "Path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}

// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string          `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string          `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string          `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	HTTPServer              HTTPServer      `yaml:"http_server"`
	RedisConnection         RedisConnection `yaml:"redis_connection"`
	RabbitMQ                RabbitMQ        `yaml:"rabbitmq"`
	Identity                Identity        `yaml:"identity"`
	Stripe                  Stripe          `yaml:"stripe"`
	Completion              Completion      `yaml:"completion"`
	SMTP                    SMTP            `yaml:"smtp"`
	RateLimit               RateLimit       `yaml:"rate_limit"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
	EventTTL     time.Duration `yaml:"event_ttl" env-default:"72h"`
}

// RabbitMQ структура для подключения к брокеру уведомлений
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	Retries    int           `yaml:"retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// Identity описывает внешнего OIDC-провайдера, выпускающего токены.
type Identity struct {
	Issuer   string `yaml:"issuer" env:"IDENTITY_ISSUER"`
	Audience string `yaml:"audience" env:"IDENTITY_AUDIENCE"`
	JWKSURL  string `yaml:"jwks_url" env:"IDENTITY_JWKS_URL"`
}

// Stripe содержит ключи и адреса для работы с платёжным провайдером.
type Stripe struct {
	SecretKey     string `yaml:"secret_key" env:"STRIPE_SECRET_KEY"`
	PriceID       string `yaml:"price_id" env:"STRIPE_PRICE_ID"`
	WebhookSecret string `yaml:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
	AppURL        string `yaml:"app_url" env:"APP_URL" env-default:"http://localhost:3000"`
}

// Completion настройки языковой модели.
type Completion struct {
	APIKey      string        `yaml:"api_key" env:"OPENAI_API_KEY"`
	Model       string        `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	BaseURL     string        `yaml:"base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	Temperature float64       `yaml:"temperature" env-default:"0.3"`
	Timeout     time.Duration `yaml:"timeout" env-default:"8s"`
}

// SMTP настройки почтового транспорта.
type SMTP struct {
	Host      string `yaml:"host" env:"SMTP_HOST"`
	Port      string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	User      string `yaml:"user" env:"SMTP_USER"`
	Pass      string `yaml:"pass" env:"SMTP_PASS"`
	ContactTo string `yaml:"contact_to" env:"CONTACT_TO"`
}

// RateLimit ограничение частоты запросов на клиента.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"1"`
	Burst int     `yaml:"burst" env-default:"5"`
}

// Load читает конфиг из файла и переопределяет значения переменными окружения.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if configPath == "" {
		return nil, fmt.Errorf("%s: CONFIG_PATH is not set", op)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file: %s - does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: cannot read config: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH
func MustLoad() *Config {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// String печатает конфиг без секретов.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"MigrationsPath: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"  EventTTL: %s\n"+
			"Identity:\n"+
			"  Issuer: %s\n"+
			"  JWKSURL: %s\n"+
			"Stripe:\n"+
			"  PriceID: %s\n"+
			"  SecretKey: %s\n"+
			"  WebhookSecret: %s\n"+
			"Completion:\n"+
			"  Model: %s\n"+
			"  APIKey: %s\n"+
			"  Timeout: %s\n",
		c.Env,
		c.MigrationsPath,
		c.HTTPServer.AddressHTTP,
		c.HTTPServer.TimeoutHTTP,
		c.HTTPServer.IdleTimeout,
		c.RedisConnection.AddressRedis,
		c.RedisConnection.DB,
		c.RedisConnection.EventTTL,
		c.Identity.Issuer,
		c.Identity.JWKSURL,
		c.Stripe.PriceID,
		mask(c.Stripe.SecretKey),
		mask(c.Stripe.WebhookSecret),
		c.Completion.Model,
		mask(c.Completion.APIKey),
		c.Completion.Timeout,
	)
}

func mask(secret string) string {
	if secret == "" {
		return "<empty>"
	}
	return "***"
}

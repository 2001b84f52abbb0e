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
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	HTTPServer              `yaml:"http_server"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	Session                 `yaml:"session"`
	Metrics                 `yaml:"metrics"`
	RateLimit               `yaml:"rate_limit"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает кеширование отчётов.
type RedisConnection struct {
	AddressRedis     string        `yaml:"addressredis"`
	RedisPassword    string        `yaml:"password"`
	RedisUser        string        `yaml:"user"`
	RedisDB          int           `yaml:"db"`
	RedisMaxRetries  int           `yaml:"max_retries"`
	RedisDialTimeout time.Duration `yaml:"dial_timeout"`
	TimeoutRedis     time.Duration `yaml:"timeoutredis"`
}

// RabbitMQ структура для настройки публикации событий аккаунтов.
// Пустой URL отключает публикацию.
type RabbitMQ struct {
	RabbitURL        string        `yaml:"url"`
	RabbitExchange   string        `yaml:"exchange" env-default:"accounts"`
	RabbitRetries    int           `yaml:"retries" env-default:"5"`
	RabbitRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// Session структура для работы с jwt-токеном сессии
type Session struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Metrics структура для настройки счётчиков и отчётов.
// PerUserLabels включает метку username у счётчиков входов и смен пароля.
type Metrics struct {
	PerUserLabels    bool          `yaml:"per_user_labels"`
	ActivityCacheTTL time.Duration `yaml:"activity_cache_ttl" env-default:"30s"`
}

// RateLimit структура для настройки ограничения частоты запросов
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"5"`
	Burst int     `yaml:"burst" env-default:"10"`
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Load читает конфиг из файла, возвращает ошибку вместо завершения процесса.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file: %s - does not exist", configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"MigrationsPath: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"RabbitMQ:\n"+
			"  Exchange: %s\n"+
			"  Enabled: %t\n"+
			"Session:\n"+
			"  JWTSecretKey: %s\n"+
			"  TokenTTL: %s\n"+
			"Metrics:\n"+
			"  PerUserLabels: %t\n"+
			"  ActivityCacheTTL: %s\n"+
			"RateLimit:\n"+
			"  RPS: %g\n"+
			"  Burst: %d\n",
		c.Env,
		mask(c.StorageConnectionString),
		c.MigrationsPath,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.AddressRedis,
		c.RedisDB,
		c.RabbitExchange,
		c.RabbitURL != "",
		mask(c.JWTSecretKey),
		c.TokenTTL,
		c.PerUserLabels,
		c.ActivityCacheTTL,
		c.RPS,
		c.Burst,
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

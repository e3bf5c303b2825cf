// Package config は環境変数からアプリケーション設定を読み込みます。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// ストアドライバ名
const (
	DriverMySQL   = "mysql"
	DriverMongo   = "mongo"
	DriverSurreal = "surrealdb"
	DriverMemory  = "memory"
)

type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	JWT     JWTConfig
	Store   StoreConfig
	MySQL   MySQLConfig
	Mongo   MongoConfig
	Surreal SurrealConfig
	Redis   RedisConfig
}

type AppConfig struct {
	Env      string `env:"APP_ENV" env-default:"development"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
}

type HTTPConfig struct {
	Port            string        `env:"PORT" env-default:"8080"`
	BasePath        string        `env:"API_BASE_PATH" env-default:"/api"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000" env-separator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type JWTConfig struct {
	Secret    string `env:"JWT_SECRET" env-required:"true"`
	ExpiresIn string `env:"JWT_EXPIRES_IN" env-default:"7d"`

	// TTL は ExpiresIn を解釈した結果です。Load が設定します。
	TTL time.Duration
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER" env-default:"mysql"`
}

type MySQLConfig struct {
	User     string `env:"DB_USER" env-default:"root"`
	Password string `env:"DB_PASS"`
	Host     string `env:"DB_HOST" env-default:"127.0.0.1"`
	Port     string `env:"DB_PORT" env-default:"3306"`
	Name     string `env:"DB_NAME" env-default:"taskboard"`
	MaxConns int    `env:"DB_MAX_CONNS" env-default:"25"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	Database string `env:"MONGO_DB" env-default:"taskboard"`
}

type SurrealConfig struct {
	URL       string `env:"SURREAL_URL" env-default:"ws://localhost:8000/rpc"`
	Namespace string `env:"SURREAL_NS" env-default:"taskboard"`
	Database  string `env:"SURREAL_DB" env-default:"taskboard"`
	User      string `env:"SURREAL_USER" env-default:"root"`
	Password  string `env:"SURREAL_PASS" env-default:"root"`
}

// RedisConfig はユーザープロフィールキャッシュの設定です。Addr が空ならキャッシュは無効です。
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `env:"USER_CACHE_TTL" env-default:"5m"`
}

// IsProduction は本番環境かどうかを返します。
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

// Load は .env (存在すれば) と環境変数から設定を読み込みます。
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	ttl, err := ParseExpiry(cfg.JWT.ExpiresIn)
	if err != nil {
		return Config{}, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	cfg.JWT.TTL = ttl

	switch cfg.Store.Driver {
	case DriverMySQL, DriverMongo, DriverSurreal, DriverMemory:
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.Store.Driver)
	}

	return cfg, nil
}

// ParseExpiry はトークン有効期限を解釈します。
// Go の duration 表記 ("168h") に加えて日数 ("7d") と秒数 ("3600") を受け付けます。
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty duration")
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("duration must be positive: %q", s)
		}
		return time.Duration(n) * time.Second, nil
	}
	if strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day duration: %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: %q", s)
	}
	return d, nil
}

package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env     string        `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Session SessionConfig `yaml:"session"`
	Update  UpdateConfig  `yaml:"update"`
}

type HTTPConfig struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":5000"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	StaticDir   string        `yaml:"static_dir" env:"STATIC_DIR"`
}

type StorageConfig struct {
	// DatabaseURL selects the persistent store. Empty means the volatile
	// in-memory store.
	DatabaseURL     string `yaml:"database_url" env:"DATABASE_URL"`
	SkipMigrations  bool   `yaml:"skip_migrations" env:"SKIP_MIGRATIONS"`
	RequireDatabase bool   `yaml:"require_database" env:"REQUIRE_DATABASE"`
}

type AuthConfig struct {
	Username   string `yaml:"username" env:"AUTH_USERNAME" env-default:"admin"`
	Password   string `yaml:"password" env:"AUTH_PASSWORD" env-required:"true"`
	BcryptCost int    `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST" env-default:"10"`
}

type SessionConfig struct {
	Secret        string        `yaml:"secret" env:"SESSION_SECRET" env-required:"true"`
	TTL           time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"24h"`
	CookieName    string        `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"inventory.sid"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SESSION_SWEEP_INTERVAL" env-default:"10m"`
}

type UpdateConfig struct {
	Enabled bool   `yaml:"enabled" env:"SELF_UPDATE"`
	Repo    string `yaml:"repo" env:"SELF_UPDATE_REPO"`
}

// MustLoad reads the config file named by --config or CONFIG_PATH when one
// is given, and the environment otherwise. Missing required secrets panic.
func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		return MustLoadFromEnv()
	}
	return MustLoadByPath(path)
}

func MustLoadByPath(configPath string) *Config {
	path := configPath
	if _, err := os.Stat(path); os.IsNotExist(err) {
		panic("config file does not exist: " + path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		panic("failed to read config: " + err.Error())
	}

	return &cfg
}

func MustLoadFromEnv() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("failed to read config: " + err.Error())
	}

	return &cfg
}

// SecureCookies reports whether session cookies need the Secure flag.
func (cfg *Config) SecureCookies() bool {
	return cfg.Env == EnvProd
}

// fetchConfigPath fetches config path from command line flag or env variable
// Priority: flag > env > default
// Default value is empty string
func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}

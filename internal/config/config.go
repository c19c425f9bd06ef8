package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	BackendSimulated = "simulated"
	BackendRedis     = "redis"
	BackendPostgres  = "postgres"
)

type Config struct {
	Env         string            `yaml:"env" env:"ENV" env-default:"local"`
	DSN         string            `yaml:"dsn" env:"DSN"`
	HTTP        HTTPConfig        `yaml:"http"`
	Commit      CommitConfig      `yaml:"commit"`
	FileStorage FileStorageConfig `yaml:"file_storage"`
	Redis       RedisConf         `yaml:"redis"`
	Session     SessionConfig     `yaml:"session"`
	Identity    IdentityConfig    `yaml:"identity"`
	SkipSeed    bool              `yaml:"skip_seed" env:"SKIP_SEED"`
}

type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// CommitConfig selects the backend standing behind submits.
type CommitConfig struct {
	Backend string        `yaml:"backend" env:"COMMIT_BACKEND" env-default:"simulated"`
	Delay   time.Duration `yaml:"delay" env:"COMMIT_DELAY" env-default:"2s"`
	KeyTTL  time.Duration `yaml:"key_ttl" env:"COMMIT_KEY_TTL" env-default:"24h"`
}

type FileStorageConfig struct {
	BaseDir string `yaml:"base_dir" env:"FILES_BASE_DIR" env-default:"./uploads"`
	BaseURL string `yaml:"base_url" env:"FILES_BASE_URL" env-default:"/uploads"`
	MaxSize int64  `yaml:"max_size" env:"FILES_MAX_SIZE" env-default:"10485760"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
}

type SessionConfig struct {
	Secret string        `yaml:"secret" env:"SESSION_SECRET" env-default:"atelieconnect-dev"`
	TTL    time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"30m"`
}

type IdentityConfig struct {
	TokenSecret string        `yaml:"token_secret" env:"TOKEN_SECRET" env-default:"atelieconnect-dev"`
	TokenTTL    time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"1h"`
	DefaultUser DefaultUser   `yaml:"default_user"`
}

type DefaultUser struct {
	Name      string `yaml:"name" env:"DEFAULT_USER_NAME" env-default:"Maria Silva"`
	AvatarURL string `yaml:"avatar_url" env:"DEFAULT_USER_AVATAR"`
}

func MustLoad() *Config {
	// .env is optional
	_ = godotenv.Load()

	path := fetchConfigPath()
	if path == "" {
		var cfg Config
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			panic("cannot read config from env: " + err.Error())
		}

		return mustValidate(&cfg)
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return mustValidate(&cfg)
}

func mustValidate(cfg *Config) *Config {
	switch cfg.Commit.Backend {
	case BackendSimulated, BackendRedis:
	case BackendPostgres:
		if cfg.DSN == "" {
			panic("dsn is required for the postgres commit backend")
		}
	default:
		panic("unknown commit backend: " + cfg.Commit.Backend)
	}

	return cfg
}

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

package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type (
	Config struct {
		App         `json:"app"         toml:"app"`
		HTTP        `json:"http"        toml:"http"`
		DB          `json:"db"          toml:"db"`
		Log         `json:"logger"      toml:"logger"`
		Storage     `json:"storage"     toml:"storage"`
		Wallet      `json:"wallet"      toml:"wallet"`
		Auth        `json:"auth"        toml:"auth"`
		Telegram    `json:"telegram"    toml:"telegram"`
		Marketplace `json:"marketplace" toml:"marketplace"`
		Workers     `json:"workers"     toml:"workers"`
	}

	App struct {
		Name        string `json:"name"        toml:"name"        env:"APP_NAME"  env-default:"bot-marketplace"`
		Environment string `json:"environment" toml:"environment" env:"ENV_NAME"  env-default:"dev"`
		Debug       bool   `json:"debug"       toml:"debug"       env:"DEBUG"     env-default:"false"`
	}

	HTTP struct {
		Port           string   `json:"port"            toml:"port"            env:"HTTP_PORT"       env-default:"8080"`
		BasePath       string   `json:"base_path"       toml:"base_path"       env:"HTTP_BASE_PATH"  env-default:"/api"`
		AllowedOrigins []string `json:"allowed_origins" toml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	}

	DB struct {
		DatabaseURL       string `json:"database_url"        toml:"database_url"        env:"DATABASE_URL"`
		PoolMax           int32  `json:"pool_max"            toml:"pool_max"            env:"PG_POOL_MAX"          env-default:"10"`
		ConnectTimeout    int    `json:"connect_timeout"     toml:"connect_timeout"     env:"PG_POOL_CONN_TIMEOUT" env-default:"5"`
		HealthCheckPeriod int    `json:"health_check_period" toml:"health_check_period" env:"PG_POOL_HEALTHCHECK"  env-default:"1"`
	}

	Log struct {
		Level      slog.Level `json:"level"       toml:"level"       env:"LOG_LEVEL"`
		Format     string     `json:"format"      toml:"format"      env:"LOG_FORMAT"      env-default:"text"`
		File       string     `json:"file"        toml:"file"        env:"LOG_FILE"`
		MaxSize    int        `json:"max_size"    toml:"max_size"    env:"LOG_MAX_SIZE"    env-default:"100"`
		MaxBackups int        `json:"max_backups" toml:"max_backups" env:"LOG_MAX_BACKUPS" env-default:"5"`
		MaxAge     int        `json:"max_age"     toml:"max_age"     env:"LOG_MAX_AGE"     env-default:"30"`
		Compress   bool       `json:"compress"    toml:"compress"    env:"LOG_COMPRESS"    env-default:"true"`
	}

	Storage struct {
		Backend       string        `json:"backend"        toml:"backend"        env:"STORAGE_BACKEND"  env-default:"badger"`
		BadgerDir     string        `json:"badger_dir"     toml:"badger_dir"     env:"BADGER_DIR"       env-default:"./data"`
		RedisAddr     string        `json:"redis_addr"     toml:"redis_addr"     env:"REDIS_ADDR"       env-default:"localhost:6379"`
		RedisPassword string        `json:"redis_password" toml:"redis_password" env:"REDIS_PASSWORD"`
		RedisDB       int           `json:"redis_db"       toml:"redis_db"       env:"REDIS_DB"         env-default:"0"`
		RedisPrefix   string        `json:"redis_prefix"   toml:"redis_prefix"   env:"REDIS_PREFIX"     env-default:"marketplace:"`
		ReadLatency   time.Duration `json:"read_latency"   toml:"read_latency"   env:"STORAGE_READ_LATENCY"  env-default:"0s"`
		WriteLatency  time.Duration `json:"write_latency"  toml:"write_latency"  env:"STORAGE_WRITE_LATENCY" env-default:"0s"`
	}

	Wallet struct {
		Secret           string        `json:"secret"            toml:"secret"            env:"WALLET_SECRET"`
		LegacyPassphrase string        `json:"legacy_passphrase" toml:"legacy_passphrase" env:"WALLET_LEGACY_PASSPHRASE" env-default:"botly-secure-key-v1"`
		ScryptN          int           `json:"scrypt_n"          toml:"scrypt_n"          env:"WALLET_SCRYPT_N"          env-default:"32768"`
		Derivation       string        `json:"derivation"        toml:"derivation"        env:"WALLET_DERIVATION"        env-default:"placeholder"`
		AdminTonAddress  string        `json:"admin_ton_address" toml:"admin_ton_address" env:"ADMIN_TON_ADDRESS"        env-default:"UQD8ulQVVbEf01COyBRuy1RZtqCewT-bfv7SoVblZiBVuo_i"`
		SendLatency      time.Duration `json:"send_latency"      toml:"send_latency"      env:"WALLET_SEND_LATENCY"      env-default:"2s"`
		SigningLatency   time.Duration `json:"signing_latency"   toml:"signing_latency"   env:"WALLET_SIGNING_LATENCY"   env-default:"1500ms"`
		QRSize           int           `json:"qr_size"           toml:"qr_size"           env:"WALLET_QR_SIZE"           env-default:"256"`
	}

	Auth struct {
		JWTSecret     string `json:"jwt_secret"     toml:"jwt_secret"     env:"JWT_SECRET"`
		Issuer        string `json:"issuer"         toml:"issuer"         env:"JWT_ISSUER"     env-default:"bot-marketplace"`
		AdminUsername string `json:"admin_username" toml:"admin_username" env:"ADMIN_USERNAME" env-default:"admin"`
		AdminPassword string `json:"admin_password" toml:"admin_password" env:"ADMIN_PASSWORD" env-default:"admin123"`
	}

	Telegram struct {
		BotToken       string        `json:"bot_token"         toml:"bot_token"         env:"TELEGRAM_BOT_TOKEN"`
		AllowUnsigned  bool          `json:"allow_unsigned"    toml:"allow_unsigned"    env:"TELEGRAM_ALLOW_UNSIGNED"    env-default:"false"`
		InitDataMaxAge time.Duration `json:"init_data_max_age" toml:"init_data_max_age" env:"TELEGRAM_INIT_DATA_MAX_AGE" env-default:"24h"`
		MasterIDs      []int64       `json:"master_ids"        toml:"master_ids"        env:"TELEGRAM_MASTER_IDS"        env-separator:"," env-default:"8426134237"`
	}

	Marketplace struct {
		LogCap int `json:"log_cap" toml:"log_cap" env:"LOG_CAP" env-default:"200"`
	}

	Workers struct {
		SettleAfter    time.Duration `json:"settle_after"    toml:"settle_after"    env:"SETTLE_AFTER"    env-default:"1m"`
		SettleInterval time.Duration `json:"settle_interval" toml:"settle_interval" env:"SETTLE_INTERVAL" env-default:"30s"`
	}
)

func LoadConfig() (*Config, error) {
	cfg := &Config{}

	_, b, _, _ := runtime.Caller(0)
	basePath := filepath.Dir(b)

	configTomlPath := filepath.Join(basePath, "config.toml")
	err := cleanenv.ReadConfig(configTomlPath, cfg)
	if err != nil {
		configJsonPath := filepath.Join(basePath, "config.json")
		err = cleanenv.ReadConfig(configJsonPath, cfg)
		if err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	}

	err = cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, fmt.Errorf("env read error: %w", err)
	}

	return cfg, nil
}

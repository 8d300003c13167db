package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=bank_ledger_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultStore = StorePostgres
const defaultSQLitePath = "ledger.db"
const defaultHTTPAddr = ":8080"
const defaultChannelID = "LedgerApp"
const defaultLockTimeout = 5 * time.Second
const defaultLogLevel = "info"

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

type Config struct {
	Store          string        `yaml:"store"`
	DatabaseDSN    string        `yaml:"databaseDsn"`
	SQLitePath     string        `yaml:"sqlitePath"`
	MigrationsDir  string        `yaml:"migrationsDir"`
	HTTPAddr       string        `yaml:"httpAddr"`
	ChannelID      string        `yaml:"channelId"`
	ChannelKeyHash string        `yaml:"channelKeyHash"`
	LockTimeout    time.Duration `yaml:"lockTimeout"`
	LogLevel       string        `yaml:"logLevel"`

	// Zero keeps the postgres package defaults.
	DBMaxOpenConns int `yaml:"dbMaxOpenConns"`
	DBMaxIdleConns int `yaml:"dbMaxIdleConns"`
}

// Load resolves configuration from defaults, then the YAML file named by
// LEDGER_CONFIG_FILE (or path, when non-empty), then environment variables.
func Load(path ...string) (Config, error) {
	cfg := Config{
		Store:         defaultStore,
		DatabaseDSN:   defaultConnectionString,
		SQLitePath:    defaultSQLitePath,
		MigrationsDir: filepath.Join("src", "migrations"),
		HTTPAddr:      defaultHTTPAddr,
		ChannelID:     defaultChannelID,
		LockTimeout:   defaultLockTimeout,
		LogLevel:      defaultLogLevel,
	}

	file := strings.TrimSpace(os.Getenv("LEDGER_CONFIG_FILE"))
	if len(path) > 0 && strings.TrimSpace(path[0]) != "" {
		file = strings.TrimSpace(path[0])
	}
	if file != "" {
		if err := loadFile(file, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.DatabaseDSN = normalizeConnectionString(cfg.DatabaseDSN)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseDSN) == "" {
			return fmt.Errorf("databaseDsn is required for store %q", c.Store)
		}
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("sqlitePath is required for store %q", c.Store)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unsupported store %q", c.Store)
	}

	if c.LockTimeout <= 0 {
		return fmt.Errorf("lockTimeout must be greater than zero")
	}

	if c.DBMaxOpenConns < 0 || c.DBMaxIdleConns < 0 {
		return fmt.Errorf("dbMaxOpenConns and dbMaxIdleConns must not be negative")
	}
	if c.DBMaxOpenConns > 0 && c.DBMaxIdleConns > c.DBMaxOpenConns {
		return fmt.Errorf("dbMaxIdleConns (%d) must not exceed dbMaxOpenConns (%d)", c.DBMaxIdleConns, c.DBMaxOpenConns)
	}

	return nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}

	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Store, "LEDGER_STORE")
	setString(&cfg.DatabaseDSN, "DATABASE_DSN")
	setString(&cfg.SQLitePath, "SQLITE_PATH")
	setString(&cfg.MigrationsDir, "MIGRATIONS_DIR")
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.ChannelID, "CHANNEL_ID")
	setString(&cfg.ChannelKeyHash, "CHANNEL_KEY_HASH")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	if raw := strings.TrimSpace(os.Getenv("LOCK_TIMEOUT")); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("parse LOCK_TIMEOUT: %w", err)
		}
		cfg.LockTimeout = timeout
	}

	if err := setInt(&cfg.DBMaxOpenConns, "DB_MAX_OPEN_CONNS"); err != nil {
		return err
	}
	if err := setInt(&cfg.DBMaxIdleConns, "DB_MAX_IDLE_CONNS"); err != nil {
		return err
	}

	return nil
}

func setInt(target *int, key string) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*target = value
	return nil
}

func setString(target *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*target = value
	}
}

// normalizeConnectionString turns ADO-style "Key=Value;..." strings into the
// lib/pq "key=value ..." form. Anything without a ';' is returned untouched.
func normalizeConnectionString(raw string) string {
	if !strings.Contains(raw, ";") {
		return strings.TrimSpace(raw)
	}

	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}

package redis

import (
	"fmt"
	"os"

	goredis "github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v2"
)

// PasswordEnv overrides Config.Password when set.
const PasswordEnv = "CHECKCACHE_REDIS_PASSWORD"

type Config struct {
	// Addrs are the endpoint addresses. More than one address selects a
	// cluster client.
	Addrs      []string `yaml:"endpoints"`
	Password   string   `yaml:"endpoint_password"`
	DB         int      `yaml:"db"`
	AllowAdmin bool     `yaml:"allow_admin"` // required for FlushAll
	// Locking declares whether checkcache should serialize compute-and-populate
	// in-process. Off by default: the data lives outside the process, so an
	// in-process lock only narrows the race window.
	Locking   bool  `yaml:"locking"`
	ScanCount int64 `yaml:"scan_count"` // 0 => 1000

	// Client replaces the lazily created connection.
	Client      goredis.UniversalClient `yaml:"-"`
	CloseClient bool                    `yaml:"-"` // set true only if this provider exclusively owns the client

	OnAsyncError AsyncErrorFunc `yaml:"-"`
}

// LoadConfig reads a YAML config file and applies the PasswordEnv override.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("redis provider: read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(b, &cfg); err != nil {
		return cfg, fmt.Errorf("redis provider: parse config %s: %w", path, err)
	}
	if pw, ok := os.LookupEnv(PasswordEnv); ok {
		cfg.Password = pw
	}
	if len(cfg.Addrs) == 0 {
		return cfg, ErrNoAddress
	}
	return cfg, nil
}

package bootstrap

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration, loaded once at startup from a
// yaml file and overridable through environment variables for the common
// infrastructure endpoints.
type Config struct {
	Infra struct {
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Kafka struct {
			Brokers []string `yaml:"brokers"`
		} `yaml:"kafka"`
		Redis struct {
			Addrs string `yaml:"addrs"`
		} `yaml:"redis"`
		Zookeeper struct {
			Servers []string `yaml:"servers"`
		} `yaml:"zookeeper"`
		MySQL struct {
			Host     string `yaml:"host"`
			Port     string `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			Database string `yaml:"database"`
		} `yaml:"mysql"`
		Nacos struct {
			Enabled     bool   `yaml:"enabled"`
			ServerAddrs string `yaml:"server_addrs"`
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
		} `yaml:"nacos"`
	} `yaml:"infra"`

	Gateway struct {
		// Base URL of the payment provider used for payment links.
		BaseURL       string `yaml:"base_url"`
		WebhookSecret string `yaml:"webhook_secret"`
	} `yaml:"gateway"`
}

var currentConfig atomic.Pointer[Config]

// Init loads configuration from CONFIG_FILE (default ./config.yaml). Missing
// file is tolerated; environment overrides still apply so containerized
// deployments can run config-file-less.
func Init() {
	cfg := &Config{}

	path := getEnv("CONFIG_FILE", "config.yaml")
	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			zlog.Fatal().Err(err).Str("path", path).Msg("invalid config file")
		}
	} else {
		zlog.Warn().Str("path", path).Msg("config file not found, relying on env defaults")
	}

	applyEnvOverrides(cfg)
	currentConfig.Store(cfg)
}

// GetCurrentConfig returns the active configuration. Init must run first.
func GetCurrentConfig() *Config {
	cfg := currentConfig.Load()
	if cfg == nil {
		zlog.Fatal().Msg("bootstrap.Init was not called")
	}
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	cfg.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", fallback(cfg.Infra.Jaeger.Endpoint, "http://localhost:14268/api/traces"))
	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		cfg.Infra.Kafka.Brokers = splitNonEmpty(v)
	}
	if len(cfg.Infra.Kafka.Brokers) == 0 {
		cfg.Infra.Kafka.Brokers = []string{"localhost:9092"}
	}
	cfg.Infra.Redis.Addrs = getEnv("REDIS_ADDRS", fallback(cfg.Infra.Redis.Addrs, "localhost:6379"))
	if v, ok := os.LookupEnv("ZOOKEEPER_SERVERS"); ok {
		cfg.Infra.Zookeeper.Servers = splitNonEmpty(v)
	}
	if len(cfg.Infra.Zookeeper.Servers) == 0 {
		cfg.Infra.Zookeeper.Servers = []string{"localhost:2181"}
	}
	cfg.Infra.MySQL.Host = getEnv("MYSQL_HOST", fallback(cfg.Infra.MySQL.Host, "localhost"))
	cfg.Infra.MySQL.Port = getEnv("MYSQL_PORT", fallback(cfg.Infra.MySQL.Port, "3306"))
	cfg.Infra.MySQL.User = getEnv("MYSQL_USER", fallback(cfg.Infra.MySQL.User, "root"))
	cfg.Infra.MySQL.Password = getEnv("MYSQL_PASSWORD", cfg.Infra.MySQL.Password)
	cfg.Infra.MySQL.Database = getEnv("MYSQL_DATABASE", fallback(cfg.Infra.MySQL.Database, "printexpress"))
	cfg.Infra.Nacos.ServerAddrs = getEnv("NACOS_SERVER_ADDRS", cfg.Infra.Nacos.ServerAddrs)
	cfg.Infra.Nacos.Namespace = getEnv("NACOS_NAMESPACE", cfg.Infra.Nacos.Namespace)
	cfg.Infra.Nacos.Group = getEnv("NACOS_GROUP", fallback(cfg.Infra.Nacos.Group, "DEFAULT_GROUP"))
	cfg.Gateway.BaseURL = getEnv("GATEWAY_BASE_URL", fallback(cfg.Gateway.BaseURL, "http://localhost:9191"))
	cfg.Gateway.WebhookSecret = getEnv("GATEWAY_WEBHOOK_SECRET", cfg.Gateway.WebhookSecret)
}

// MySQLDSN renders the gorm DSN using the driver's own config type, so
// charset/parseTime quirks stay in one place.
func (c *Config) MySQLDSN() string {
	mc := mysql.NewConfig()
	mc.User = c.Infra.MySQL.User
	mc.Passwd = c.Infra.MySQL.Password
	mc.Net = "tcp"
	mc.Addr = c.Infra.MySQL.Host + ":" + c.Infra.MySQL.Port
	mc.DBName = c.Infra.MySQL.Database
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func getEnv(key, fb string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fb
}

func fallback(v, fb string) string {
	if v == "" {
		return fb
	}
	return v
}

func splitNonEmpty(csv string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(csv); i++ {
		if i == len(csv) || csv[i] == ',' {
			if i > start {
				out = append(out, csv[start:i])
			}
			start = i + 1
		}
	}
	return out
}

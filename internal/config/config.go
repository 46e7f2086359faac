package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig Managed Database（Postgres）连接配置
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RemoteConfig Remote Backend（HTTP API）配置
type RemoteConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// Configured 占位地址视同未配置（部署模板里常见 "https://YOUR-BACKEND"）
func (c *RemoteConfig) Configured() bool {
	if c.BaseURL == "" {
		return false
	}
	upper := strings.ToUpper(c.BaseURL)
	return !strings.Contains(upper, "YOUR-") && !strings.Contains(upper, "EXAMPLE.COM")
}

// CacheConfig 本地缓存快照后端（单机默认 sqlite，多副本部署用 redis）
type CacheConfig struct {
	Backend string `yaml:"backend"` // "sqlite" | "redis"
	Path    string `yaml:"path"`    // sqlite 文件路径
	Redis   struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// MQTTConfig 容量变化广播配置（默认禁用）
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // 如 "tcp://localhost:1883"
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         byte   `yaml:"qos"`
}

// Config relief-data（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	DBEnabled bool           `yaml:"db_enabled"`
	Database  DatabaseConfig `yaml:"database"`
	Remote    RemoteConfig   `yaml:"remote"`
	Cache     CacheConfig    `yaml:"cache"`
	MQTT      MQTTConfig     `yaml:"mqtt"`
	Jobs      struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"jobs"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load 环境变量优先于内置默认；CONFIG_FILE 指定的 yaml 最后整体覆盖
func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// Default to false: most field deployments run without a managed database
	// and go straight to the remote backend or the local cache.
	cfg.DBEnabled = getEnv("DB_ENABLED", "false") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "relief")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Remote.BaseURL = getEnv("REMOTE_BASE_URL", "")
	cfg.Remote.Token = getEnv("REMOTE_TOKEN", "")
	cfg.Remote.Timeout = parseDuration(getEnv("REMOTE_TIMEOUT", "8s"), 8*time.Second)

	cfg.Cache.Backend = getEnv("CACHE_BACKEND", "sqlite")
	cfg.Cache.Path = getEnv("CACHE_PATH", "relief-cache.db")
	cfg.Cache.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Cache.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Cache.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "relief-data")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.TopicPrefix = getEnv("MQTT_TOPIC_PREFIX", "relief/centers")
	cfg.MQTT.QoS = byte(parseInt(getEnv("MQTT_QOS", "1"), 1))

	cfg.Jobs.Enabled = getEnv("JOBS_ENABLED", "true") == "true"

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "config: cannot load %s: %v\n", path, err)
		}
	}
	return cfg
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

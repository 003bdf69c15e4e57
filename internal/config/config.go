package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Environment   string              `mapstructure:"environment"`
	Server        ServerConfig        `mapstructure:"server"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Session       SessionConfig       `mapstructure:"session"`
	Lockout       LockoutConfig       `mapstructure:"lockout"`
	Demo          DemoConfig          `mapstructure:"demo"`
	Hashing       HashingConfig       `mapstructure:"hashing"`
	Storage       StorageConfig       `mapstructure:"storage"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Audit         AuditConfig         `mapstructure:"audit"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Clickhouse    ClickhouseConfig    `mapstructure:"clickhouse"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	CertFile     string        `mapstructure:"cert_file"`
	KeyFile      string        `mapstructure:"key_file"`
	// AllowedOrigins feeds the CORS handler.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// TrustProxyHeaders takes the client address from X-Real-IP and
	// X-Forwarded-For. Only enable behind a proxy that sets them.
	TrustProxyHeaders bool `mapstructure:"trust_proxy_headers"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SessionConfig holds the session lifecycle timings.
type SessionConfig struct {
	MaxLifetime      time.Duration `mapstructure:"max_lifetime"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	ActivityThrottle time.Duration `mapstructure:"activity_throttle"`
}

type LockoutConfig struct {
	Threshold    int           `mapstructure:"threshold"`
	BaseDuration time.Duration `mapstructure:"base_duration"`
}

// DemoConfig describes the single seeded dashboard user.
type DemoConfig struct {
	UserID      string `mapstructure:"user_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	DisplayName string `mapstructure:"display_name"`
	Email       string `mapstructure:"email"`
	Role        string `mapstructure:"role"`
	MFACode     string `mapstructure:"mfa_code"`

	// An approver account is only registered when AdminUsername is set.
	AdminUsername    string `mapstructure:"admin_username"`
	AdminPassword    string `mapstructure:"admin_password"`
	AdminDisplayName string `mapstructure:"admin_display_name"`
	AdminEmail       string `mapstructure:"admin_email"`
}

type HashingConfig struct {
	Argon2MemoryCost  int    `mapstructure:"argon2_memory_cost"`
	Argon2TimeCost    int    `mapstructure:"argon2_time_cost"`
	Argon2Parallelism int    `mapstructure:"argon2_parallelism"`
	Pepper            string `mapstructure:"pepper"`
}

type StorageConfig struct {
	// Backend is either "memory" or "redis".
	Backend string `mapstructure:"backend"`
}

// RateLimitConfig bounds API calls per client in a fixed window.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type RedisConfig struct {
	URL       string `mapstructure:"url"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	PoolSize  int    `mapstructure:"pool_size"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type AuditConfig struct {
	BufferSize     int           `mapstructure:"buffer_size"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type ElasticsearchConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Index    string `mapstructure:"index"`
}

type ClickhouseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	Table    string `mapstructure:"table"`
}

// LoadConfig reads an optional .env file, then overlays SECUREBANK_* environment
// variables on top of the defaults.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SECUREBANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.cert_file", "")
	v.SetDefault("server.key_file", "")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.trust_proxy_headers", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("session.max_lifetime", "60m")
	v.SetDefault("session.idle_timeout", "5m")
	v.SetDefault("session.poll_interval", "10s")
	v.SetDefault("session.activity_throttle", "1s")

	v.SetDefault("lockout.threshold", 5)
	v.SetDefault("lockout.base_duration", "30s")

	v.SetDefault("demo.user_id", "USER001")
	v.SetDefault("demo.username", "demo")
	v.SetDefault("demo.password", "SecureBank123!")
	v.SetDefault("demo.display_name", "Farwah")
	v.SetDefault("demo.email", "demo@securebank.com")
	v.SetDefault("demo.role", "premium")
	v.SetDefault("demo.mfa_code", "123456")
	v.SetDefault("demo.admin_username", "")
	v.SetDefault("demo.admin_password", "")
	v.SetDefault("demo.admin_display_name", "Operations")
	v.SetDefault("demo.admin_email", "ops@securebank.com")

	v.SetDefault("hashing.argon2_memory_cost", 64*1024)
	v.SetDefault("hashing.argon2_time_cost", 1)
	v.SetDefault("hashing.argon2_parallelism", 2)
	v.SetDefault("hashing.pepper", "")

	v.SetDefault("storage.backend", "memory")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "60s")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.key_prefix", "securebank:")

	v.SetDefault("audit.buffer_size", 1024)
	v.SetDefault("audit.publish_timeout", "5s")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "securebank.security-events")

	v.SetDefault("elasticsearch.enabled", false)
	v.SetDefault("elasticsearch.url", "http://localhost:9200")
	v.SetDefault("elasticsearch.username", "")
	v.SetDefault("elasticsearch.password", "")
	v.SetDefault("elasticsearch.index", "security-events")

	v.SetDefault("clickhouse.enabled", false)
	v.SetDefault("clickhouse.url", "localhost:9000")
	v.SetDefault("clickhouse.username", "default")
	v.SetDefault("clickhouse.password", "")
	v.SetDefault("clickhouse.database", "securebank")
	v.SetDefault("clickhouse.table", "security_events")
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid storage backend: %q", c.Storage.Backend)
	}
	if c.Lockout.Threshold <= 0 {
		return fmt.Errorf("lockout threshold must be positive")
	}
	if c.Lockout.BaseDuration <= 0 {
		return fmt.Errorf("lockout base duration must be positive")
	}
	if c.Session.PollInterval <= 0 || c.Session.MaxLifetime <= 0 || c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("session timings must be positive")
	}
	if c.Demo.Username == "" || c.Demo.Password == "" {
		return fmt.Errorf("demo credentials are required")
	}
	if c.Demo.AdminUsername != "" && c.Demo.AdminPassword == "" {
		return fmt.Errorf("admin password is required when admin username is set")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("rate limit requests and window must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka enabled without brokers")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) GetServerAddress() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) TLSEnabled() bool {
	return c.Server.CertFile != "" && c.Server.KeyFile != ""
}

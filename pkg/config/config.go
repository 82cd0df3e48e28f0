package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Etcd     EtcdConfig     `mapstructure:"etcd"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Store    StoreConfig    `mapstructure:"store"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	MongoDB  MongoDBConfig  `mapstructure:"mongodb"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Log      LogConfig      `mapstructure:"log"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Shop     ShopConfig     `mapstructure:"shop"`
}

// ServerConfig describes the gRPC health endpoint and the name used for discovery.
type ServerConfig struct {
	Name string `mapstructure:"name"`
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type EtcdConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Prefix      string        `mapstructure:"prefix"`
}

type RedisConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	PoolSize   int           `mapstructure:"pool_size"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// StoreConfig selects the order backend: "mysql", "postgres" or "memory".
type StoreConfig struct {
	Driver        string        `mapstructure:"driver"`
	ProbeInterval time.Duration `mapstructure:"probe_interval"`
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type MongoDBConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type KafkaConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Brokers      []string `mapstructure:"brokers"`
	CreatedTopic string   `mapstructure:"created_topic"`
	StatusTopic  string   `mapstructure:"status_topic"`
}

type GatewayConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Encoding    string   `mapstructure:"encoding"`
	OutputPaths []string `mapstructure:"output_paths"`
}

// AdminConfig holds the dashboard credential. PasswordHash is a bcrypt hash.
type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

type ShopConfig struct {
	Name        string          `mapstructure:"name"`
	Recipient   string          `mapstructure:"recipient"`
	LocalTown   string          `mapstructure:"local_town"`
	DialPrefix  string          `mapstructure:"dial_prefix"`
	DeliveryFee int64           `mapstructure:"delivery_fee"`
	TopItems    int             `mapstructure:"top_items"`
	Products    []ProductConfig `mapstructure:"products"`
}

type ProductConfig struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	Price       int64  `mapstructure:"price"`
	Image       string `mapstructure:"image"`
	Description string `mapstructure:"description"`
	Weight      string `mapstructure:"weight"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "storefront")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 50051)
	v.SetDefault("gateway.host", "0.0.0.0")
	v.SetDefault("gateway.port", 8080)
	v.SetDefault("etcd.dial_timeout", 5)
	v.SetDefault("etcd.prefix", "/services/")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.session_ttl", 24*time.Hour)
	v.SetDefault("store.driver", "mysql")
	v.SetDefault("store.probe_interval", 15*time.Second)
	v.SetDefault("mysql.max_idle_conns", 5)
	v.SetDefault("mysql.max_open_conns", 20)
	v.SetDefault("mongodb.collection", "order_audit")
	v.SetDefault("kafka.created_topic", "orders.created")
	v.SetDefault("kafka.status_topic", "orders.status")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.output_paths", []string{"stdout"})
	v.SetDefault("shop.name", "Spice Kitchen")
	v.SetDefault("shop.recipient", "919876543210")
	v.SetDefault("shop.local_town", "Davangere")
	v.SetDefault("shop.dial_prefix", "91")
	v.SetDefault("shop.delivery_fee", 50)
	v.SetDefault("shop.top_items", 5)
}

func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("storefront")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the storefront cannot run with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "mysql", "postgres", "memory":
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}
	if c.Store.ProbeInterval <= 0 {
		return fmt.Errorf("store.probe_interval must be positive")
	}
	if c.Shop.Recipient == "" {
		return fmt.Errorf("shop.recipient is required")
	}
	if c.Shop.DeliveryFee < 0 {
		return fmt.Errorf("shop.delivery_fee must not be negative")
	}
	return nil
}

func (c *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database)
}

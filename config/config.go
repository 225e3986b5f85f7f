package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database DatabaseConfig  `yaml:"database"`
	Kafka    KafkaConfig     `yaml:"kafka"`
	Redis    RedisConfig     `yaml:"redis"`
	Locker   LockerBoxConfig `yaml:"lockerbox"`
	Vendors  []VendorSeed    `yaml:"vendors"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// DSN renders the pgx connection string.
func (d DatabaseConfig) DSN() string {
	ssl := d.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.DBName, ssl)
}

type KafkaConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	VendorSyncedTopicName string `yaml:"vendor_synced_topic_name"`
}

func (k KafkaConfig) Addr() string {
	return fmt.Sprintf("%s:%d", k.Host, k.Port)
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LockerBoxConfig struct {
	HTTPAddr           string `yaml:"http_addr"`
	AdminHTTPAddr      string `yaml:"admin_http_addr"`
	KafkaConsumerGroup string `yaml:"kafka_consumer_group"`
	CountsTTLSeconds   int    `yaml:"counts_ttl_seconds"`

	SyncIntervalSeconds   int `yaml:"sync_interval_seconds"`
	SyncRetryAttempts     int `yaml:"sync_retry_attempts"`
	SyncRetryDelaySeconds int `yaml:"sync_retry_delay_seconds"`
	InactiveThresholdDays int `yaml:"inactive_threshold_days"`

	FetchConnectTimeoutSeconds int `yaml:"fetch_connect_timeout_seconds"`
	FetchTotalTimeoutSeconds   int `yaml:"fetch_total_timeout_seconds"`

	GeocodeBaseURL            string `yaml:"geocode_base_url"`
	GeocodeCacheTTLSeconds    int    `yaml:"geocode_cache_ttl_seconds"`
	GeocodeRateLimitPerMinute int    `yaml:"geocode_rate_limit_per_minute"`
}

// VendorSeed declares a vendor and its feeds in the config file. Seeds are
// upserted into the database on startup so a fresh deployment needs no
// manual vendor provisioning.
type VendorSeed struct {
	Code   string     `yaml:"code"`
	Name   string     `yaml:"name"`
	APIURL string     `yaml:"api_url"`
	Feeds  []FeedSeed `yaml:"feeds"`
}

type FeedSeed struct {
	Key string `yaml:"key"`
	URL string `yaml:"url"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}

package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Shop    ShopConfig    `yaml:"shop"`
	Redis   RedisConfig   `yaml:"redis"`
	Tracker TrackerConfig `yaml:"tracker"`
}

type ShopConfig struct {
	APIBaseURL string `yaml:"api_base_url"`
	// APIMode: "http" — реальный backend, "fake" — локальная заглушка.
	APIMode         string `yaml:"api_mode"`
	PaymentProvider string `yaml:"payment_provider"`
	DefaultCountry  string `yaml:"default_country"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TrackerConfig struct {
	HTTPAddr string `yaml:"http_addr"`

	PollIntervalSeconds    int `yaml:"poll_interval_seconds"`
	ErrorThreshold         int `yaml:"error_threshold"`
	PendingOrderTTLSeconds int `yaml:"pending_order_ttl_seconds"`
	GuestLookupsPerMinute  int `yaml:"guest_lookups_per_minute"`
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

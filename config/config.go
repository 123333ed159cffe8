package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Paystack PaystackConfig `yaml:"paystack"`
	Payments PaymentsConfig `yaml:"payments"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	PaymentEventsTopic string   `yaml:"payment_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type PaystackConfig struct {
	SecretKey      string `yaml:"secret_key"`
	BaseURL        string `yaml:"base_url"`
	CallbackURL    string `yaml:"callback_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type PaymentsConfig struct {
	Currency          string `yaml:"currency"`
	PendingTTLHours   int    `yaml:"pending_ttl_hours"`
	EventsCacheTTL    int    `yaml:"events_cache_ttl_seconds"`
	VerifyLockSeconds int    `yaml:"verify_lock_seconds"`
}

type WorkerConfig struct {
	ReminderSweepMinutes int `yaml:"reminder_sweep_minutes"`
	ReminderBatchSize    int `yaml:"reminder_batch_size"`
	ExpirySweepMinutes   int `yaml:"expiry_sweep_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                8080,
			ReadTimeoutSeconds:  10 * time.Second,
			WriteTimeoutSeconds: 10 * time.Second,
		},
		Broker: BrokerConfig{
			Type: "kafka",
			Kafka: KafkaConfig{
				Brokers:     []string{"localhost:9092"},
				GroupID:     "fieldtel-ingest",
				InputTopic:  "inbound_message_queue",
				OutputTopic: "outbound_message_queue",
			},
		},
		Database: DatabaseConfig{
			Driver: "mongodb",
			MongoDB: MongoDBConfig{
				URI:      "mongodb://localhost:27017",
				Database: "fieldtel",
			},
		},
		Ingest: IngestConfig{
			Whitelist: []int{1, 2, 3},
		},
	}
}

func TestValidateStatic(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:      "invalid port",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			wantError: true,
		},
		{
			name:      "missing broker type",
			mutate:    func(c *Config) { c.Broker.Type = "" },
			wantError: true,
		},
		{
			name:      "unknown broker type",
			mutate:    func(c *Config) { c.Broker.Type = "rabbitmq" },
			wantError: true,
		},
		{
			name:      "no kafka brokers",
			mutate:    func(c *Config) { c.Broker.Kafka.Brokers = nil },
			wantError: true,
		},
		{
			name:      "empty broker address",
			mutate:    func(c *Config) { c.Broker.Kafka.Brokers = []string{""} },
			wantError: true,
		},
		{
			name:      "missing group id",
			mutate:    func(c *Config) { c.Broker.Kafka.GroupID = "" },
			wantError: true,
		},
		{
			name:      "unknown store driver",
			mutate:    func(c *Config) { c.Database.Driver = "cassandra" },
			wantError: true,
		},
		{
			name:      "malformed mongodb uri",
			mutate:    func(c *Config) { c.Database.MongoDB.URI = "localhost:27017" },
			wantError: true,
		},
		{
			name: "postgres driver without host",
			mutate: func(c *Config) {
				c.Database.Driver = "postgres"
				c.Database.Postgres = PostgresConfig{}
			},
			wantError: true,
		},
		{
			name: "postgres driver with valid config",
			mutate: func(c *Config) {
				c.Database.Driver = "postgres"
				c.Database.Postgres = PostgresConfig{
					Host:    "localhost",
					Port:    5432,
					User:    "fieldtel",
					DBName:  "fieldtel",
					SSLMode: "disable",
				}
			},
		},
		{
			name: "redis with missing port",
			mutate: func(c *Config) {
				c.Database.Redis = RedisConfig{Host: "localhost"}
			},
			wantError: true,
		},
		{
			name:      "non-positive whitelist entry",
			mutate:    func(c *Config) { c.Ingest.Whitelist = []int{7, 0} },
			wantError: true,
		},
		{
			name:      "negative cache ttl",
			mutate:    func(c *Config) { c.Ingest.SeenCacheTTLSeconds = -1 },
			wantError: true,
		},
		{
			name:   "authority base url with scheme",
			mutate: func(c *Config) { c.Authority.BaseURL = "http://machine-authority:8080" },
		},
		{
			name:      "authority base url without scheme",
			mutate:    func(c *Config) { c.Authority.BaseURL = "machine-authority:8080" },
			wantError: true,
		},
		{
			name: "retry max interval below initial",
			mutate: func(c *Config) {
				c.Broker.Kafka.Retry = RetryConfig{
					MaxAttempts:     3,
					InitialInterval: 5 * time.Second,
					MaxInterval:     1 * time.Second,
				}
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateStatic(cfg)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAuthority(t *testing.T) {
	tests := []struct {
		name      string
		cfg       AuthorityConfig
		wantError bool
	}{
		{
			name: "valid http url",
			cfg:  AuthorityConfig{BaseURL: "http://machine-authority:8080"},
		},
		{
			name: "valid https url with timeout",
			cfg:  AuthorityConfig{BaseURL: "https://authority.example.com", RequestTimeout: 5 * time.Second},
		},
		{
			name:      "empty base url",
			cfg:       AuthorityConfig{},
			wantError: true,
		},
		{
			name:      "missing scheme",
			cfg:       AuthorityConfig{BaseURL: "machine-authority:8080"},
			wantError: true,
		},
		{
			name:      "negative timeout",
			cfg:       AuthorityConfig{BaseURL: "http://machine-authority:8080", RequestTimeout: -time.Second},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAuthority(tt.cfg)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

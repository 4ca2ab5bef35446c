package config

import (
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/realtime"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/storage/postgres"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/storage/redis"
)

// RedisStorage returns the redis backend settings
func (c *Config) RedisStorage() redis.Config {
	return redis.Config{
		URL:          c.Storage.Redis.URL,
		PoolSize:     c.Storage.Redis.PoolSize,
		MinIdleConns: c.Storage.Redis.MinIdleConns,
		KeyPrefix:    c.Storage.Redis.KeyPrefix,
	}
}

// PostgresStorage returns the postgres backend settings
func (c *Config) PostgresStorage() postgres.Config {
	return postgres.Config{
		DSN:             c.Storage.Postgres.DSN,
		MaxIdleConns:    c.Storage.Postgres.MaxIdleConns,
		MaxOpenConns:    c.Storage.Postgres.MaxOpenConns,
		ConnMaxLifetime: c.Storage.Postgres.ConnMaxLifetime,
		SlowThreshold:   c.Storage.Postgres.SlowThreshold,
	}
}

// RealtimeSessions returns the websocket session settings
func (c *Config) RealtimeSessions() realtime.Config {
	return realtime.Config{
		RequestTimeout:  c.Realtime.RequestTimeout,
		PingPeriod:      c.Realtime.PingPeriod,
		PongWait:        c.Realtime.PongWait,
		WriteWait:       c.Realtime.WriteWait,
		MaxMessageSize:  c.Realtime.MaxMessageSize,
		SendBufferSize:  c.Realtime.SendBufferSize,
		EventsPerSecond: c.Realtime.EventsPerSecond,
		EventBurst:      c.Realtime.EventBurst,
		AllowedOrigins:  c.CORS.AllowedOrigins,
	}
}

package postgres

import "time"

// Config holds PostgreSQL connection and pool settings
type Config struct {
	// DSN is the connection string (e.g., host=localhost user=rabble dbname=rabble sslmode=disable)
	DSN string

	// Pool settings
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration

	// SlowThreshold is the query duration above which gorm logs a warning
	SlowThreshold time.Duration
}

// DefaultConfig returns sensible defaults for PostgreSQL configuration
func DefaultConfig() Config {
	return Config{
		DSN:             "host=localhost port=5432 user=rabble password=rabble dbname=rabble sslmode=disable",
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
		SlowThreshold:   time.Second,
	}
}

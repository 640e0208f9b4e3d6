package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-migrate/migrate/v4"
	"github.com/joefazee/veilbet/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gLogger "gorm.io/gorm/logger"

	// drivers used by golang-migrate
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver         string `env:"DB_DRIVER" env-default:"postgres"`
	Host           string `env:"DB_HOST"`
	Port           string `env:"DB_PORT" env-default:"5432"`
	User           string `env:"DB_USER"`
	Password       string `env:"DB_PASSWORD"`
	Database       string `env:"DB_NAME"`
	UseSSL         bool   `env:"DB_SSL_MODE"`
	LogQuery       bool   `env:"DB_LOG_QUERY"`
	SQLitePath     string `env:"DB_SQLITE_PATH" env-default:"veilbet.db"`
	MigrationsPath string `env:"DB_MIGRATIONS_PATH" env-default:"migrations"`
	MaxOpenConns   int    `env:"DB_MAX_OPEN_CONNS" env-default:"10"`
}

func (c *Config) Validate() error {
	switch c.Driver {
	case DriverPostgres:
		if c.Host == "" || c.Password == "" || c.Database == "" || c.User == "" {
			return models.ErrDatabaseCredentialNotConfigured
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return models.ErrDatabaseCredentialNotConfigured
		}
	default:
		return fmt.Errorf("%w: %q", models.ErrUnsupportedDatabaseDriver, c.Driver)
	}
	return nil
}

// PostgresURL is the DSN golang-migrate expects.
func (c *Config) PostgresURL() string {
	sslMode := "disable"
	if c.UseSSL {
		sslMode = "require"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslMode)
}

func New(c *Config) (*gorm.DB, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	// constraint violations surface as gorm.ErrDuplicatedKey and friends
	cfg := &gorm.Config{TranslateError: true}
	if !c.LogQuery {
		cfg.Logger = gLogger.Discard
	}

	var dialector gorm.Dialector
	switch c.Driver {
	case DriverSQLite:
		dialector = sqlite.Open(c.SQLitePath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	default:
		dialector = postgres.Open(c.PostgresURL())
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}

	if c.Driver == DriverSQLite {
		// one writer at a time
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
		sqlDB.SetMaxIdleConns(c.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Models lists every table owned by the service.
func Models() []interface{} {
	return []interface{}{
		&models.Market{},
		&models.Bet{},
		&models.DecryptionRequest{},
		&models.MarketEvent{},
		&models.Wallet{},
		&models.Transaction{},
	}
}

// Migrate brings the schema up to date: SQL migrations on postgres, AutoMigrate on sqlite.
func Migrate(c *Config, db *gorm.DB) error {
	if c.Driver == DriverSQLite {
		return AutoMigrate(db)
	}

	m, err := migrate.New("file://"+c.MigrationsPath, c.PostgresURL())
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// AutoMigrate creates tables from the gorm models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	return nil
}

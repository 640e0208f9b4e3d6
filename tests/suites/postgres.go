package suites

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/joefazee/veilbet/app/database"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	_ "github.com/lib/pq"
)

const (
	postgresUser     = "veilbet"
	postgresPassword = "veilbet-test"
	postgresDB       = "veilbet_test"
)

// PostgresContainer is a throwaway postgres for repository integration tests.
type PostgresContainer struct {
	testcontainers.Container
	Config database.Config
}

func NewPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	const port = "5432/tcp"

	dbURL := func(host string, port nat.Port) string {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			postgresUser, postgresPassword, host, port.Port(), postgresDB)
	}

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17.5-alpine3.21",
		ExposedPorts: []string{port},
		Cmd:          []string{"postgres", "-c", "fsync=off"},
		Env: map[string]string{
			"POSTGRES_DB":       postgresDB,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_USER":     postgresUser,
		},
		WaitingFor: wait.ForSQL(port, "postgres", dbURL).
			WithStartupTimeout(60 * time.Second).
			WithQuery("SELECT 1"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &PostgresContainer{
		Container: container,
		Config: database.Config{
			Driver:       database.DriverPostgres,
			Host:         host,
			Port:         mappedPort.Port(),
			User:         postgresUser,
			Password:     postgresPassword,
			Database:     postgresDB,
			MaxOpenConns: 5,
		},
	}, nil
}

// PostgresTestSuite runs the SQL migrations once per suite and truncates every table between tests.
// Skipped with -short.
type PostgresTestSuite struct {
	suite.Suite
	Container *PostgresContainer
	DB        *gorm.DB
}

func (s *PostgresTestSuite) SetupSuite() {
	if testing.Short() {
		s.T().Skip("Skipping database integration tests in short mode")
	}

	ctx := context.Background()
	container, err := NewPostgresContainer(ctx)
	if err != nil {
		s.T().Fatalf("Failed to create postgres container: %v", err)
	}
	s.Container = container
	s.T().Cleanup(func() { _ = container.Terminate(context.Background()) })

	container.Config.MigrationsPath = findMigrationsPath()

	db, err := database.New(&container.Config)
	if err != nil {
		s.T().Fatalf("Failed to connect: %v", err)
	}
	s.DB = db

	if err := database.Migrate(&container.Config, db); err != nil {
		s.T().Fatalf("Failed to run migrations: %v", err)
	}
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.DB == nil {
		return
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (s *PostgresTestSuite) SetupTest() {
	s.truncate()
}

func (s *PostgresTestSuite) truncate() {
	var tables []string
	s.DB.Raw(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		AND table_type = 'BASE TABLE'
		AND table_name <> 'schema_migrations'
	`).Scan(&tables)

	for _, table := range tables {
		s.DB.Exec(fmt.Sprintf(`TRUNCATE TABLE %q RESTART IDENTITY CASCADE`, table))
	}
}

func (s *PostgresTestSuite) CountRecords(table string) int64 {
	var c int64
	s.DB.Table(table).Count(&c)
	return c
}

func (s *PostgresTestSuite) TableExists(table string) bool {
	return s.DB.Migrator().HasTable(table)
}

// findMigrationsPath walks up to the module root.
func findMigrationsPath() string {
	wd, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return filepath.Join(wd, "migrations")
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			return "migrations"
		}
		wd = parent
	}
}

package nexus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDB struct {
	Password string `env:"NEXUS_TEST_DB_PASSWORD"`
}

type testConfig struct {
	DB      testDB
	Port    string `env:"NEXUS_TEST_PORT" validate:"required"`
	Env     string `env:"NEXUS_TEST_ENV"`
	FeeBps  int    `env:"NEXUS_TEST_FEE_BPS"`
	Invalid bool   `env:"NEXUS_TEST_INVALID"`
}

func (c *testConfig) Validate() error {
	if c.Invalid {
		return errors.New("invalid on purpose")
	}
	return nil
}

func (c *testConfig) IsProduction() bool {
	return c.Env == "production"
}

func TestLoaderReadsEnvironmentAndDefaults(t *testing.T) {
	t.Setenv("NEXUS_TEST_PORT", "9090")

	cfg := &testConfig{}
	err := NewLoader(WithDotenv(), WithDefaults(&testConfig{FeeBps: 200, Port: "8080"})).Load(cfg)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 200, cfg.FeeBps)
}

func TestLoaderDotenvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("NEXUS_TEST_PORT=7070\nNEXUS_TEST_FEE_BPS=50\n"), 0o600))

	t.Setenv("NEXUS_TEST_FEE_BPS", "75")
	t.Cleanup(func() { _ = os.Unsetenv("NEXUS_TEST_PORT") })

	cfg := &testConfig{}
	require.NoError(t, NewLoader(WithDotenv(file, filepath.Join(dir, "missing.env"))).Load(cfg))

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, 75, cfg.FeeBps)
}

func TestLoaderValidation(t *testing.T) {
	t.Run("struct tags", func(t *testing.T) {
		t.Setenv("NEXUS_TEST_PORT", "")
		err := NewLoader(WithDotenv()).Load(&testConfig{})

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, ErrCodeValidation, cfgErr.Code)
	})

	t.Run("validate method", func(t *testing.T) {
		t.Setenv("NEXUS_TEST_PORT", "1")
		t.Setenv("NEXUS_TEST_INVALID", "true")
		err := NewLoader(WithDotenv()).Load(&testConfig{})
		assert.ErrorContains(t, err, "invalid on purpose")
	})

	t.Run("rejects non pointer", func(t *testing.T) {
		err := NewLoader().Load(testConfig{})

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, ErrCodeInvalidType, cfgErr.Code)
	})
}

func TestSecurityCheckOnlyInProduction(t *testing.T) {
	t.Setenv("NEXUS_TEST_PORT", "1")
	t.Setenv("NEXUS_TEST_DB_PASSWORD", "password123")

	t.Setenv("NEXUS_TEST_ENV", "development")
	require.NoError(t, NewLoader(WithDotenv()).Load(&testConfig{}))

	t.Setenv("NEXUS_TEST_ENV", "production")
	err := NewLoader(WithDotenv()).Load(&testConfig{})

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrCodeSecurityCheck, cfgErr.Code)
	assert.Contains(t, err.Error(), "DB.Password")
}

func TestLoaderReadsConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.env")
	require.NoError(t, os.WriteFile(file, []byte("NEXUS_TEST_PORT=6060\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("NEXUS_TEST_PORT") })

	cfg := &testConfig{}
	require.NoError(t, NewLoader(WithDotenv(), WithFileName(file)).Load(cfg))
	assert.Equal(t, "6060", cfg.Port)

	err := NewLoader(WithDotenv(), WithFileName(filepath.Join(t.TempDir(), "nope.yml"))).Load(&testConfig{})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrCodeFileNotFound, cfgErr.Code)
}

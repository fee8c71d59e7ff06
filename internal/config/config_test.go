package config_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/profilehub/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:             ":8000",
		StoreDriver:      config.DriverSQLite,
		DBPath:           "test.db",
		LogLevel:         "INFO",
		AutoSaveInterval: 15 * time.Second,
		StoreTimeout:     5 * time.Second,
		APIWorkerCount:   10,
		APIQueueSize:     64,
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, config.DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, 15*time.Second, cfg.AutoSaveInterval)
	assert.Equal(t, 10, cfg.APIWorkerCount)
	assert.True(t, cfg.ConsoleEnabled)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("STORE_DRIVER", "POSTGRES")
	t.Setenv("AUTOSAVE_INTERVAL", "1m")
	t.Setenv("API_WORKER_COUNT", "3")
	t.Setenv("CONSOLE_ENABLED", "false")

	cfg := config.Load()

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, config.DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, time.Minute, cfg.AutoSaveInterval)
	assert.Equal(t, 3, cfg.APIWorkerCount)
	assert.False(t, cfg.ConsoleEnabled)
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.StoreDriver = "mysql"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.AutoSaveInterval = 0
	cfg.APIWorkerCount = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTOSAVE_INTERVAL")
	assert.Contains(t, err.Error(), "API_WORKER_COUNT")
}

func TestCredentialCell_Switch(t *testing.T) {
	cell := config.NewCredentialCell(
		config.Credential{User: "postgres", Password: "1234"},
		config.Credential{User: "admin", Password: "admin123"},
		config.Credential{User: "guest", Password: "guest123"},
	)
	assert.Equal(t, config.RoleDefault, cell.Role())
	assert.Equal(t, "postgres", cell.Active().User)

	cell.Switch(config.ParseRole("ADMIN"))
	assert.Equal(t, config.RoleAdmin, cell.Role())
	assert.Equal(t, "admin", cell.Active().User)

	got := cell.Switch(config.ParseRole("visitor"))
	assert.Equal(t, "guest", got.User)
	assert.Equal(t, config.RoleGuest, cell.Role())
}

func TestCredentialCell_ConcurrentAccess(t *testing.T) {
	cell := validConfig().Credentials()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				cell.Switch(config.RoleAdmin)
			} else {
				cell.Switch(config.RoleGuest)
			}
		}(i)
		go func() {
			defer wg.Done()
			_ = cell.Active()
		}()
	}
	wg.Wait()

	assert.Contains(t, []config.Role{config.RoleAdmin, config.RoleGuest}, cell.Role())
}

package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedEnv = []string{
	"SHOP_APP_NAME",
	"SHOP_APP_ENV",
	"SHOP_APP_PORT",
	"SHOP_DATABASE_DRIVER",
	"SHOP_DATABASE_HOST",
	"SHOP_DATABASE_PORT",
	"SHOP_DATABASE_PASSWORD",
	"SHOP_DATABASE_SSLMODE",
	"SHOP_DATABASE_PATH",
	"SHOP_DATABASE_MAX_OPEN_CONNS",
	"SHOP_DATABASE_MAX_IDLE_CONNS",
	"SHOP_LEDGER_BATCH_SPLIT_POLICY",
	"SHOP_LEDGER_BILL_DUE_DAYS",
	"SHOP_LEDGER_DEFAULT_CREDIT_LIMIT",
	"SHOP_SCHEDULER_SWEEP_HOUR",
	"SHOP_IDEMPOTENCY_TTL",
	"SHOP_TELEMETRY_DB_LOG_FULL_SQL",
	"SHOP_TELEMETRY_SAMPLING_RATIO",
}

// isolateEnv clears the managed variables for the duration of the test
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedEnv {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		isolateEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "shopman-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "shopman", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, SplitPolicyTruncate, cfg.Ledger.BatchSplitPolicy)
		assert.Equal(t, 30, cfg.Ledger.BillDueDays)
		assert.Equal(t, 30, cfg.Ledger.ExpiryWarningDays)
		assert.True(t, cfg.Ledger.DefaultCreditLimit.Equal(decimal.NewFromInt(10000)))
		assert.Equal(t, 10, cfg.Ledger.DefaultMinStockLevel)
		assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
		assert.Equal(t, 10*time.Minute, cfg.Scheduler.LockTTL)
	})

	t.Run("loads values from environment variables with SHOP prefix", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("SHOP_APP_NAME", "till-7")
		t.Setenv("SHOP_APP_PORT", "9000")
		t.Setenv("SHOP_DATABASE_DRIVER", "sqlite")
		t.Setenv("SHOP_DATABASE_PATH", "/var/lib/shop.db")
		t.Setenv("SHOP_LEDGER_BATCH_SPLIT_POLICY", "split")
		t.Setenv("SHOP_LEDGER_BILL_DUE_DAYS", "45")
		t.Setenv("SHOP_LEDGER_DEFAULT_CREDIT_LIMIT", "2500.50")
		t.Setenv("SHOP_IDEMPOTENCY_TTL", "2h")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "till-7", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, "/var/lib/shop.db", cfg.Database.Path)
		assert.Equal(t, SplitPolicySplit, cfg.Ledger.BatchSplitPolicy)
		assert.Equal(t, 45, cfg.Ledger.BillDueDays)
		assert.Equal(t, "2500.5", cfg.Ledger.DefaultCreditLimit.String())
		assert.Equal(t, 2*time.Hour, cfg.Idempotency.TTL)
	})

	t.Run("rejects an unknown split policy", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("SHOP_LEDGER_BATCH_SPLIT_POLICY", "lifo")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ledger.batch_split_policy")
	})

	t.Run("rejects an unknown driver", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("SHOP_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects a malformed credit limit", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("SHOP_LEDGER_DEFAULT_CREDIT_LIMIT", "lots")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "default_credit_limit")
	})

	t.Run("rejects an out of range sweep hour", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("SHOP_SCHEDULER_SWEEP_HOUR", "24")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scheduler.sweep_hour")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("SHOP_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("SHOP_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates sampling ratio range", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("SHOP_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	production := func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("SHOP_APP_ENV", "production")
		t.Setenv("SHOP_DATABASE_PASSWORD", "secure-password")
		t.Setenv("SHOP_DATABASE_SSLMODE", "require")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		production(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("requires database.password for postgres", func(t *testing.T) {
		production(t)
		require.NoError(t, os.Unsetenv("SHOP_DATABASE_PASSWORD"))

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL for postgres", func(t *testing.T) {
		production(t)
		t.Setenv("SHOP_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode")
	})

	t.Run("sqlite skips the postgres guards", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("SHOP_APP_ENV", "production")
		t.Setenv("SHOP_DATABASE_DRIVER", "sqlite")

		_, err := Load()
		require.NoError(t, err)
	})

	t.Run("forbids full SQL in traces", func(t *testing.T) {
		production(t)
		t.Setenv("SHOP_TELEMETRY_DB_LOG_FULL_SQL", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db_log_full_sql")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid postgres DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})

	t.Run("sqlite DSN enables foreign keys", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: DriverSQLite, Path: "shop.db"}
		assert.Equal(t, "shop.db?_foreign_keys=on", cfg.DSN())
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func createTempFile(t testing.TB, data []byte) *os.File {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "config-*.yml")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		f.Close()
	})

	if _, err := f.Write(data); err != nil {
		t.Fatal(err)
	}

	return f
}

func TestLoad(t *testing.T) {
	t.Run("non-existent config file", func(t *testing.T) {
		cfg, err := Load("invalid/path/to/config.yml")

		assert.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Nil(t, cfg)
	})

	t.Run("invalid config file", func(t *testing.T) {
		data := `http_server:
  port: not number
postgres:
  user: test
  password: test
  db: test`

		f := createTempFile(t, []byte(data))
		cfg, err := Load(f.Name())

		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("success", func(t *testing.T) {
		data := `postgres:
  user: test
  password: test
  db: test
jwt:
  secret: test-secret`

		f := createTempFile(t, []byte(data))
		cfg, err := Load(f.Name())

		assert.NoError(t, err)
		assert.NotNil(t, cfg)

		var wantCfg Config
		setDefaults(&wantCfg)

		wantCfg.Postgres.User = "test"
		wantCfg.Postgres.Password = "test"
		wantCfg.Postgres.DB = "test"
		wantCfg.JWT.Secret = "test-secret"

		assert.Equal(t, wantCfg, *cfg)
	})

	t.Run("overrides defaults", func(t *testing.T) {
		data := `env: prod
short_code:
  length: 8
http_server:
  port: 9090
postgres:
  user: test
  password: test
  db: test`

		f := createTempFile(t, []byte(data))
		cfg, err := Load(f.Name())

		assert.NoError(t, err)
		assert.NotNil(t, cfg)
		assert.Equal(t, EnvProd, cfg.Env)
		assert.Equal(t, 8, cfg.ShortCode.Length)
		assert.Equal(t, 9090, cfg.HTTPServer.Port)
		assert.Equal(t, defaultShortCode.TTL, cfg.ShortCode.TTL)
		assert.Equal(t, defaultScheduler.HourlyResetInterval, cfg.Scheduler.HourlyResetInterval)
	})
}

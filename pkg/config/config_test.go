package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/procurement-pipeline/internal/domain/procurement"
	"github.com/jhoicas/procurement-pipeline/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, procurement.DefaultConfig(), cfg.Pipeline.Procurement())
	assert.Equal(t, config.BackendFile, cfg.Storage.ArtifactBackend)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 30*time.Minute, cfg.Redis.LockTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_UmbralesDesdeEntorno(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HIGH_DEMAND_THRESHOLD", "500")
	t.Setenv("LOW_STOCK_RATIO", "0.25")
	t.Setenv("LEAD_TIME_DAYS", "5")
	t.Setenv("PIPELINE_PARALLEL_BRANCHES", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DB_PORT", "no-es-numero")

	cfg, err := config.Load()

	require.NoError(t, err)
	pc := cfg.Pipeline.Procurement()
	assert.Equal(t, int64(500), pc.Thresholds.HighDemand)
	assert.InDelta(t, 0.25, pc.Thresholds.LowStockRatio, 1e-9)
	assert.Equal(t, 5, pc.Orders.LeadTimeDays)
	assert.True(t, cfg.Pipeline.ParallelBranches)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 5432, cfg.DB.Port, "un valor no numérico cae en el defecto")
}

func TestValidate_CombinacionesInvalidas(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := config.Load()
	require.NoError(t, err)

	bad := *cfg
	bad.Storage.ArtifactBackend = "s3"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Pipeline.CriticalStockRatio = 0.9
	assert.Error(t, bad.Validate())
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss/w", DBName: "x", SSLMode: "disable"}

	assert.Equal(t, "postgres://u:p%40ss%2Fw@db:5432/x?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}

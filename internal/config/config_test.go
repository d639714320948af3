package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, ":6969", cfg.Server.NativeAddr)
	require.Equal(t, ":6970", cfg.Server.BridgeAddr)
	require.Equal(t, ":8080", cfg.Server.MetricsAddr)
	require.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	require.Equal(t, int64(123456789), cfg.World.Seed)
	require.Equal(t, 100*time.Millisecond, cfg.World.SchedulerInterval)
	require.Equal(t, 100*time.Millisecond, cfg.World.DrainInterval)

	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("VOXEL_NATIVE_ADDR", ":9999")
	t.Setenv("VOXEL_WORLD_SEED", "42")
	t.Setenv("VOXEL_SCHEDULER_INTERVAL_MS", "250")
	t.Setenv("VOXEL_SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	require.Equal(t, ":9999", cfg.Server.NativeAddr)
	require.Equal(t, int64(42), cfg.World.Seed)
	require.Equal(t, 250*time.Millisecond, cfg.World.SchedulerInterval)
	require.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestGetEnvInt64IgnoresUnparsableValue(t *testing.T) {
	t.Setenv("VOXEL_WORLD_SEED", "not-a-number")
	cfg := Load()
	require.Equal(t, int64(123456789), cfg.World.Seed)
}

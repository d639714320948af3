package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server  ServerConfig
	World   WorldConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	NativeAddr      string
	BridgeAddr      string
	MetricsAddr     string
	ShutdownTimeout time.Duration
}

type WorldConfig struct {
	// Seed feeds the §4.1 heightmap noise. Changing it in production
	// changes terrain already seen by clients - see spec §9.
	Seed              int64
	SchedulerInterval time.Duration
	DrainInterval     time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			NativeAddr:      getEnvStr("VOXEL_NATIVE_ADDR", ":6969"),
			BridgeAddr:      getEnvStr("VOXEL_BRIDGE_ADDR", ":6970"),
			MetricsAddr:     getEnvStr("VOXEL_METRICS_ADDR", ":8080"),
			ShutdownTimeout: getEnvDuration("VOXEL_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		World: WorldConfig{
			Seed:              getEnvInt64("VOXEL_WORLD_SEED", 123456789),
			SchedulerInterval: getEnvDurationMS("VOXEL_SCHEDULER_INTERVAL_MS", 100),
			DrainInterval:     getEnvDurationMS("VOXEL_DRAIN_INTERVAL_MS", 100),
		},
		Logging: LoggingConfig{
			Level:  getEnvStr("LOG_LEVEL", "info"),
			Format: getEnvStr("LOG_FORMAT", "json"),
		},
	}
}

func getEnvStr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvDurationMS(key string, defaultMS int64) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return time.Duration(defaultMS) * time.Millisecond
}

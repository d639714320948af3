package logging

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/voxelserver/internal/config"
)

func TestInitSetsLevelFromConfig(t *testing.T) {
	Init(config.LoggingConfig{Level: "debug", Format: "json"})
	require.Equal(t, "debug", Logger.GetLevel().String())
}

func TestInitDefaultsToInfoOnUnknownLevel(t *testing.T) {
	Init(config.LoggingConfig{Level: "chatty", Format: "json"})
	require.Equal(t, "info", Logger.GetLevel().String())
}

func TestWithComponentTagsChildLogger(t *testing.T) {
	Init(config.LoggingConfig{Level: "info", Format: "json"})
	child := WithComponent("session")
	require.NotNil(t, child)
}

func TestGetLoggerInitializesWhenNil(t *testing.T) {
	Logger = nil
	require.NotNil(t, GetLogger())
}

package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigAppliesChangedFlags(t *testing.T) {
	cmd := newRootCommand()
	missing := filepath.Join(t.TempDir(), "absent.yaml")
	require.NoError(t, cmd.ParseFlags([]string{
		"--config", missing,
		"--data", "other.csv",
		"--log-level", "debug",
	}))

	opts := trainOptions{configFile: missing, dataFile: "other.csv", logLevel: "debug"}
	cfg, err := loadConfig(cmd, opts)
	require.NoError(t, err)

	assert.Equal(t, "other.csv", cfg.Data.Input)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "weights.txt", cfg.Output.Weights)
	assert.Equal(t, "output.txt", cfg.Output.Summary)
}

func TestRootCommandRejectsArgs(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"extra"})
	assert.Error(t, cmd.Execute())
}

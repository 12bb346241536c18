package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/staff-cover/cmd/cli/commands"
	"github.com/jakechorley/staff-cover/internal/config"
	"github.com/jakechorley/staff-cover/pkg/metrics"
)

func TestExecute_FailedCommandStillWritesMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staffcover.prom")
	app = &commands.AppContext{
		Cfg:     &config.Config{MetricsFile: path},
		Metrics: metrics.NewCollector(),
		Logger:  zap.NewNop(),
	}
	t.Cleanup(func() { app = &commands.AppContext{} })

	cmd := &cobra.Command{
		Use:           "fail",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Metrics.RecordError(time.Millisecond)
			return errors.New("assignment failed")
		},
	}
	cmd.SetArgs([]string{})

	err := execute(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assignment failed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `staffcover_runs_total{outcome="error"} 1`)
}

func TestShutdown_BeforeInit(t *testing.T) {
	app = &commands.AppContext{}
	t.Cleanup(func() { app = &commands.AppContext{} })

	assert.NoError(t, shutdown())
}

func TestShutdown_MetricsWriteFailure(t *testing.T) {
	app = &commands.AppContext{
		Cfg:     &config.Config{MetricsFile: filepath.Join(t.TempDir(), "missing", "staffcover.prom")},
		Metrics: metrics.NewCollector(),
	}
	t.Cleanup(func() { app = &commands.AppContext{} })

	assert.Error(t, shutdown())
}

package metrics

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clientstage/internal/errors"
	"github.com/felixgeelhaar/clientstage/internal/exec"
	"github.com/felixgeelhaar/clientstage/internal/exec/exectest"
)

func TestObserveStage(t *testing.T) {
	_, m := NewRegistry()

	m.ObserveStage("sync", 2*time.Second, nil)
	m.ObserveStage("build", time.Second, errors.NewCommandFailure("./gradlew clean test", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageRuns.WithLabelValues("sync", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageRuns.WithLabelValues("build", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("CMD-001", "build")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.StageDuration))
}

func TestObserveRunAndCommands(t *testing.T) {
	_, m := NewRegistry()

	m.ObserveCommand("git", 10*time.Millisecond, true)
	m.ObserveCommand("git", 10*time.Millisecond, false)
	m.ObserveRun(nil)
	m.ObserveRun(stderrors.New("plain"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("git", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("false")))
	assert.Greater(t, testutil.ToFloat64(m.LastSuccess), 0.0)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "API-001", ErrorCode(errors.NewPullRequestError("master", "b", nil)))
	assert.Equal(t, "unknown", ErrorCode(stderrors.New("plain")))
}

func TestWriteTextfile(t *testing.T) {
	reg, m := NewRegistry()
	m.ClientFolders.Set(3)

	path := filepath.Join(t.TempDir(), "textfile", "clientstage.prom")
	require.NoError(t, WriteTextfile(reg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "clientstage_client_folders 3"))
}

func TestInstrumentObservesCommands(t *testing.T) {
	_, m := NewRegistry()
	rec := &exectest.Recorder{Handler: func(cmd exec.Command) (*exec.Result, error) {
		if cmd.Name == "tar" {
			return exectest.Fail(cmd, 2, "bad archive")
		}
		return &exec.Result{}, nil
	}}
	runner := m.Instrument(rec)

	_, err := runner.Run(context.Background(), exec.Command{Name: "git", Args: []string{"status"}})
	require.NoError(t, err)
	_, err = runner.Run(context.Background(), exec.Command{Name: "./gradlew", Args: []string{"test"}})
	require.NoError(t, err)
	_, err = runner.Run(context.Background(), exec.Command{Name: "tar", Args: []string{"-tf", "a"}})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("git", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("gradlew", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("tar", "false")))
	assert.Len(t, rec.Calls(), 3)
}

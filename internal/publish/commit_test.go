package publish

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clientstage/internal/errors"
	"github.com/felixgeelhaar/clientstage/internal/exec"
	"github.com/felixgeelhaar/clientstage/internal/exec/exectest"
	"github.com/felixgeelhaar/clientstage/internal/git"
	"github.com/felixgeelhaar/clientstage/internal/log"
)

func failing(prefix string) *exectest.Recorder {
	return &exectest.Recorder{Handler: func(cmd exec.Command) (*exec.Result, error) {
		if strings.HasPrefix(cmd.String(), prefix) {
			return exectest.Fail(cmd, 128, "fatal")
		}
		return &exec.Result{}, nil
	}}
}

func TestPublishCommandSequence(t *testing.T) {
	rec := &exectest.Recorder{}
	p := NewCommitPublisher(git.New("/ws", rec), log.Discard())

	require.NoError(t, p.Publish(context.Background(), "pubsub-regen"))

	assert.Equal(t, []string{
		"git status",
		"git commit --allow-empty -m Regenerate Java client sources",
		"git push -u origin pubsub-regen",
	}, rec.Lines())
	for _, c := range rec.Calls() {
		assert.Equal(t, "/ws", c.Dir)
	}
}

func TestPublishIgnoresStatusFailure(t *testing.T) {
	rec := failing("git status")
	p := NewCommitPublisher(git.New("/ws", rec), log.Discard())

	require.NoError(t, p.Publish(context.Background(), "b"))
	assert.True(t, rec.Ran("git push"))
}

func TestPublishStopsOnCommitFailure(t *testing.T) {
	rec := failing("git commit")
	p := NewCommitPublisher(git.New("/ws", rec), log.Discard())

	err := p.Publish(context.Background(), "b")

	require.Error(t, err)
	assert.True(t, errors.IsCommandFailure(err))
	assert.False(t, rec.Ran("git push"))
}

func TestPublishPushFailureIsNotRetried(t *testing.T) {
	rec := failing("git push")
	p := NewCommitPublisher(git.New("/ws", rec), log.Discard())

	err := p.Publish(context.Background(), "b")

	require.Error(t, err)
	pushes := 0
	for _, line := range rec.Lines() {
		if strings.HasPrefix(line, "git push") {
			pushes++
		}
	}
	assert.Equal(t, 1, pushes)
}

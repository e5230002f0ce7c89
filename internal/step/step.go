// Package step runs the staging pipeline: inventory, synchronization, build
// gate, commit and push, pull request and artifact, strictly in that order.
package step

import (
	"context"
	"path/filepath"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/clientstage/internal/archive"
	"github.com/felixgeelhaar/clientstage/internal/build"
	"github.com/felixgeelhaar/clientstage/internal/config"
	"github.com/felixgeelhaar/clientstage/internal/errors"
	"github.com/felixgeelhaar/clientstage/internal/exec"
	"github.com/felixgeelhaar/clientstage/internal/forge"
	"github.com/felixgeelhaar/clientstage/internal/git"
	"github.com/felixgeelhaar/clientstage/internal/log"
	"github.com/felixgeelhaar/clientstage/internal/metrics"
	"github.com/felixgeelhaar/clientstage/internal/output"
	"github.com/felixgeelhaar/clientstage/internal/publish"
	"github.com/felixgeelhaar/clientstage/internal/staging"
	"github.com/felixgeelhaar/clientstage/internal/telemetry"
)

// Stage names, as used in logs, spans, metrics and hook data.
const (
	StagePrepare     = "prepare"
	StageInventory   = "inventory"
	StageSync        = "sync"
	StageBuild       = "build"
	StageCommit      = "commit"
	StagePullRequest = "pull_request"
	StageOutput      = "output"
)

// Result is what a run produced, also on failure up to the failed stage.
type Result struct {
	RunID        string
	Folders      []archive.ClientFolder
	Sync         *staging.Report
	Built        bool
	PRURL        string
	ArtifactPath string
	// FailedStage is empty on success.
	FailedStage string
	Duration    time.Duration
}

// Options carries the collaborators of a Step.
type Options struct {
	RunID   string
	Runner  exec.Runner
	Forge   forge.Client
	Metrics *metrics.Metrics
	Logger  *log.Logger
}

// Step is one staging run over a validated configuration.
type Step struct {
	cfg     *config.ExecutionConfig
	runID   string
	logger  *log.Logger
	metrics *metrics.Metrics

	repoID    forge.RepositoryID
	sources   string
	workspace staging.Workspace
	repo      *git.Repo
	inventory *archive.Inventory
	sync      *staging.Synchronizer
	gate      *build.Gate
	commit    *publish.CommitPublisher
	prs       *forge.PullRequestPublisher
	writer    *output.Writer
}

// New wires a Step. cfg must have passed config.Validate.
func New(cfg *config.ExecutionConfig, opts Options) (*Step, error) {
	logger := log.OrDefault(opts.Logger)

	repoID, err := forge.ParseRepository(cfg.Staging.GitRepo)
	if err != nil {
		return nil, errors.NewConfigInvalidError("staging.git_repo", cfg.Staging.GitRepo, err.Error())
	}
	buildArgv, err := cfg.BuildArgv()
	if err != nil {
		return nil, err
	}
	mode, err := cfg.FileMode()
	if err != nil {
		return nil, err
	}

	runner := opts.Runner
	if opts.Metrics != nil {
		runner = opts.Metrics.Instrument(runner)
	}

	root, err := filepath.Abs(cfg.Staging.Workspace)
	if err != nil {
		return nil, errors.NewConfigInvalidError("staging.workspace", cfg.Staging.Workspace, err.Error())
	}
	ws := staging.Workspace{Root: root}

	// tar -tf runs inside the workspace; both stages must read the same file.
	archivePath, err := filepath.Abs(cfg.GeneratorArtifacts.SourcesZip)
	if err != nil {
		return nil, errors.NewConfigInvalidError("generator_artifacts.sources_zip", cfg.GeneratorArtifacts.SourcesZip, err.Error())
	}
	sync := staging.NewSynchronizer(ws, runner, cfg.Staging.Namespace, logger.Stage(StageSync))

	return &Step{
		cfg:       cfg,
		runID:     opts.RunID,
		logger:    logger,
		metrics:   opts.Metrics,
		repoID:    repoID,
		sources:   archivePath,
		workspace: ws,
		repo:      sync.Repo,
		inventory: &archive.Inventory{Runner: runner, Dir: ws.Root},
		sync:      sync,
		gate: &build.Gate{
			Enabled: cfg.Staging.RunTests,
			Command: buildArgv,
			Runner:  runner,
			Logger:  logger.Stage(StageBuild),
		},
		commit: publish.NewCommitPublisher(sync.Repo, logger.Stage(StageCommit)),
		prs: &forge.PullRequestPublisher{
			Client: opts.Forge,
			Repo:   repoID,
			User:   cfg.Staging.GitUserName,
			Token:  cfg.Staging.GitSecurityToken,
			Logger: logger.Stage(StagePullRequest),
		},
		writer: &output.Writer{Dir: cfg.OutputDir, Mode: mode},
	}, nil
}

// RunID returns the identifier of the run.
func (s *Step) RunID() string { return s.runID }

// DebugMode reports the configured debug flag.
func (s *Step) DebugMode() bool { return s.cfg.DebugMode }

// ArtifactPath returns where a successful run writes its artifact.
func (s *Step) ArtifactPath() string { return s.writer.Path() }

// Run executes every stage in order and stops at the first error, which is
// returned unchanged. Nothing is retried or rolled back.
func (s *Step) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	ctx, span := telemetry.StartRunSpan(ctx, s.runID)
	defer span.End()

	res := &Result{RunID: s.runID}
	err := s.run(ctx, res)
	res.Duration = time.Since(start)

	if s.metrics != nil {
		s.metrics.ObserveRun(err)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return res, err
	}
	telemetry.RecordSuccess(span, attribute.String("pr_url", res.PRURL))
	return res, nil
}

func (s *Step) run(ctx context.Context, res *Result) error {
	archivePath := s.sources
	branch := s.cfg.Staging.GitBranch

	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{StagePrepare, func(ctx context.Context) error {
			if err := s.writer.Clear(); err != nil {
				return err
			}
			cloneURL := git.AuthenticatedURL(s.repoID.Host, s.repoID.Owner, s.repoID.Name,
				s.cfg.Staging.GitUserName, s.cfg.Staging.GitSecurityToken)
			return staging.Prepare(ctx, s.repo, cloneURL, branch, s.logger.Stage(StagePrepare))
		}},
		{StageInventory, func(ctx context.Context) error {
			folders, err := s.inventory.List(ctx, archivePath)
			if err != nil {
				return err
			}
			res.Folders = folders
			if s.metrics != nil {
				s.metrics.ClientFolders.Set(float64(len(folders)))
			}
			s.logger.Info("found client folders", "count", len(folders))
			return nil
		}},
		{StageSync, func(ctx context.Context) error {
			report, err := s.sync.Sync(ctx, archivePath, res.Folders)
			res.Sync = report
			return err
		}},
		{StageBuild, func(ctx context.Context) error {
			built, err := s.gate.Run(ctx, s.workspace.NamespaceDir(s.cfg.Staging.Namespace))
			res.Built = built
			return err
		}},
		{StageCommit, func(ctx context.Context) error {
			return s.commit.Publish(ctx, branch)
		}},
		{StagePullRequest, func(ctx context.Context) error {
			url, err := s.prs.Publish(ctx, branch)
			if s.metrics != nil {
				s.metrics.PullRequests.WithLabelValues(strconv.FormatBool(err == nil)).Inc()
			}
			res.PRURL = url
			return err
		}},
		{StageOutput, func(ctx context.Context) error {
			path, err := s.writer.Write(output.Artifact{PRURL: res.PRURL})
			res.ArtifactPath = path
			return err
		}},
	}

	for _, st := range stages {
		if err := s.stage(ctx, st.name, st.fn); err != nil {
			res.FailedStage = st.name
			return err
		}
	}
	return nil
}

func (s *Step) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := telemetry.StartStageSpan(ctx, name)
	defer span.End()

	logger := s.logger.Stage(name)
	logger.Debug("stage started")
	start := time.Now()

	err := fn(ctx)
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveStage(name, elapsed, err)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		logger.WithError(err).Error("stage failed", "duration", elapsed)
		return err
	}

	telemetry.RecordSuccess(span)
	logger.Debug("stage finished", "duration", elapsed)
	return nil
}

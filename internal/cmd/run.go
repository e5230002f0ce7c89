package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clientstage/internal/config"
	"github.com/felixgeelhaar/clientstage/internal/errors"
	"github.com/felixgeelhaar/clientstage/internal/exec"
	"github.com/felixgeelhaar/clientstage/internal/forge"
	"github.com/felixgeelhaar/clientstage/internal/health"
	"github.com/felixgeelhaar/clientstage/internal/hooks"
	"github.com/felixgeelhaar/clientstage/internal/log"
	"github.com/felixgeelhaar/clientstage/internal/metrics"
	"github.com/felixgeelhaar/clientstage/internal/output"
	"github.com/felixgeelhaar/clientstage/internal/step"
	"github.com/felixgeelhaar/clientstage/internal/ux"
)

type runOptions struct {
	configPath  string
	workspace   string
	outputDir   string
	metricsFile string
	manifestDir string
	preflight   bool

	// forge replaces the GitHub client in tests.
	forge forge.Client
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the staging step",
		Long: `Run the staging step described by the configuration file.

On success output.yaml in the output directory holds the pull request URL.
On any failure the file is absent and the exit code names the failure class:
2 configuration, 3 external command, 4 hosting API.`,
		Example: `  clientstage run --config step.yaml
  clientstage run --config step.yaml --workspace /tmp/staging --metrics-file /var/lib/node_exporter/clientstage.prom`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStep(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "step configuration file")
	cmd.Flags().StringVar(&opts.workspace, "workspace", "", "override staging.workspace")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "override output_dir")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")
	cmd.Flags().StringVar(&opts.manifestDir, "manifest-dir", "", "write a JSON run manifest into this directory")
	cmd.Flags().BoolVar(&opts.preflight, "preflight", false, "check git and tar before running")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runStep(cmd *cobra.Command, opts *runOptions) error {
	ctx := cmd.Context()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.workspace != "" {
		cfg.Staging.Workspace = opts.workspace
	}
	if opts.outputDir != "" {
		cfg.OutputDir = opts.outputDir
	}

	runID := uuid.NewString()
	logger := log.DefaultLogger()
	if cfg.DebugMode {
		logger = debugLogger(logger)
	}
	logger = logger.With("run_id", runID)
	logger.Info("starting staging run", "config", cfg.String())

	cleanup := setupTelemetry(ctx, logger)
	defer cleanup()

	transcript := &exec.Transcript{}
	runner := &exec.LocalRunner{
		Logger:     logger,
		Stream:     cfg.DebugMode,
		Redactor:   exec.NewRedactor(cfg.Secrets()...),
		Transcript: transcript,
	}

	if opts.preflight {
		if err := preflight(ctx, runner, logger); err != nil {
			return err
		}
	}

	registry := hooks.NewRegistry(logger)
	for i := range cfg.Hooks {
		if err := registry.RegisterFromConfig(&cfg.Hooks[i]); err != nil {
			return errors.NewConfigInvalidError("hooks", cfg.Hooks[i].Name, err.Error())
		}
	}
	lifecycle, err := step.NewHookLifecycle(registry, runID, logger)
	if err != nil {
		return err
	}

	client := opts.forge
	if client == nil {
		client = forge.NewGitHub(cfg.Staging.APIURL)
	}
	reg, m := metrics.NewRegistry()
	s, err := step.New(cfg, step.Options{
		RunID:   runID,
		Runner:  runner,
		Forge:   client,
		Metrics: m,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	res, runErr := step.Execute(ctx, s, lifecycle)

	if opts.manifestDir != "" {
		path, err := saveManifest(opts.manifestDir, runID, transcript, res, runErr)
		if err != nil {
			logger.Warn("failed to save run manifest", "error", err)
		} else {
			logger.Info("run manifest saved", "path", path)
		}
	}
	if opts.metricsFile != "" {
		if err := metrics.WriteTextfile(reg, opts.metricsFile); err != nil {
			logger.Warn("failed to write metrics", "error", err)
		}
	}

	summary := ux.Summary{RunID: runID, Err: runErr}
	if res != nil {
		summary.Folders = len(res.Folders)
		summary.Built = res.Built
		summary.PRURL = res.PRURL
		summary.ArtifactPath = res.ArtifactPath
		summary.FailedStage = res.FailedStage
		summary.Duration = res.Duration
	}
	fmt.Fprintln(cmd.OutOrStdout(), ux.RenderSummary(summary))

	return runErr
}

func preflight(ctx context.Context, runner exec.Runner, logger *log.Logger) error {
	outcomes := health.NewManager(health.NewGitChecker(runner), health.NewTarChecker(runner)).Check(ctx)
	for _, o := range outcomes {
		logger.Info("preflight check", "check", o.Name, "status", o.Status.String(), "message", o.Message)
	}
	if failed := health.Failures(outcomes); len(failed) > 0 {
		return errors.New(errors.ErrCodeCommandNotFound, "preflight failed: "+strings.Join(failed, ", ")).
			WithSuggestion("Run 'clientstage doctor' for details")
	}
	return nil
}

func saveManifest(dir, runID string, transcript *exec.Transcript, res *step.Result, runErr error) (string, error) {
	manifest := exec.NewManifest(runID)
	manifest.Success = runErr == nil
	if runErr != nil {
		manifest.Error = runErr.Error()
	}
	manifest.Commands = transcript.Records()
	if res != nil {
		if res.Sync != nil {
			manifest.TreeDigest = res.Sync.Digest
		}
		if res.ArtifactPath != "" {
			if err := manifest.AddOutputHash(output.FileName, res.ArtifactPath); err != nil {
				return "", err
			}
		}
	}
	return exec.SaveManifest(manifest, dir)
}

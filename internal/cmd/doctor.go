package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clientstage/internal/errors"
	"github.com/felixgeelhaar/clientstage/internal/exec"
	"github.com/felixgeelhaar/clientstage/internal/health"
	"github.com/felixgeelhaar/clientstage/internal/log"
	"github.com/felixgeelhaar/clientstage/internal/ux"
)

// DoctorCheck is one line of the doctor report.
type DoctorCheck struct {
	Name    string                 `json:"name" yaml:"name"`
	Status  string                 `json:"status" yaml:"status"`
	Message string                 `json:"message" yaml:"message"`
	Details map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

// DoctorReport is the full doctor output.
type DoctorReport struct {
	Checks  []DoctorCheck `json:"checks" yaml:"checks"`
	Status  string        `json:"status" yaml:"status"`
	Healthy bool          `json:"healthy" yaml:"healthy"`
}

func newDoctorCmd() *cobra.Command {
	var (
		workspace string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment a run depends on",
		Long: `Check that git (2.0 or later) and GNU tar are available and whether the
workspace is already a git working tree.

Examples:
  clientstage doctor --workspace /workspace/api-client-staging
  clientstage doctor --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := exec.NewLocalRunner(log.DefaultLogger())
			manager := health.NewManager(health.NewGitChecker(runner), health.NewTarChecker(runner))
			if workspace != "" {
				manager.Add(health.NewWorkspaceChecker(workspace))
			}

			outcomes := manager.Check(cmd.Context())
			overall := health.Overall(outcomes)
			report := DoctorReport{Status: overall.String(), Healthy: overall != health.StatusUnhealthy}
			for _, o := range outcomes {
				report.Checks = append(report.Checks, DoctorCheck{
					Name:    o.Name,
					Status:  o.Status.String(),
					Message: o.Message,
					Details: o.Details,
				})
			}

			if format == "text" {
				for _, c := range report.Checks {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %-12s %s\n", ux.StatusMark(c.Status), c.Name, c.Message)
					if s, ok := c.Details["suggestion"].(string); ok {
						fmt.Fprintf(cmd.OutOrStdout(), "  → %s\n", s)
					}
				}
			} else {
				formatter, err := ux.NewFormatter(format, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if err := formatter.Format(report); err != nil {
					return err
				}
			}

			if !report.Healthy {
				return errors.New(errors.ErrCodeCommandNotFound, "environment is not ready for a staging run")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&workspace, "workspace", "", "staging working tree to inspect")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json, yaml)")
	return cmd
}

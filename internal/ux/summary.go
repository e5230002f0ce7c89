// Package ux renders human-facing command output.
package ux

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Width(16)

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// Summary is the end-of-run report printed to the terminal.
type Summary struct {
	RunID        string
	Folders      int
	Built        bool
	PRURL        string
	ArtifactPath string
	FailedStage  string
	Err          error
	Duration     time.Duration
}

// RenderSummary formats s as a short labelled block.
func RenderSummary(s Summary) string {
	var b strings.Builder

	if s.Err != nil {
		b.WriteString(failStyle.Render("✗ Staging failed"))
	} else {
		b.WriteString(okStyle.Render("✓ Staging complete"))
	}
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}

	row("Run", s.RunID)
	row("Client folders", fmt.Sprintf("%d", s.Folders))
	if s.Built {
		row("Build", okStyle.Render("passed"))
	} else if s.FailedStage == "build" {
		row("Build", failStyle.Render("failed"))
	} else {
		row("Build", warnStyle.Render("skipped"))
	}
	if s.PRURL != "" {
		row("Pull request", s.PRURL)
	}
	if s.ArtifactPath != "" {
		row("Artifact", s.ArtifactPath)
	}
	if s.FailedStage != "" {
		row("Failed stage", failStyle.Render(s.FailedStage))
	}
	row("Duration", s.Duration.Round(time.Millisecond).String())

	return titleStyle.Render("clientstage") + "\n" + b.String()
}

// StatusMark renders a health status as a coloured symbol.
func StatusMark(status string) string {
	switch status {
	case "healthy":
		return okStyle.Render("✓")
	case "degraded":
		return warnStyle.Render("!")
	default:
		return failStyle.Render("✗")
	}
}

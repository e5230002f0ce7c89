package staging

import (
	"context"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/clientstage/internal/archive"
	"github.com/felixgeelhaar/clientstage/internal/errors"
	"github.com/felixgeelhaar/clientstage/internal/exec"
	"github.com/felixgeelhaar/clientstage/internal/git"
	"github.com/felixgeelhaar/clientstage/internal/log"
)

// Report describes a completed synchronization.
type Report struct {
	// Targets are the workspace-relative destinations, in folder order.
	Targets []string
	// Outside are the targets whose language is not the extracted
	// namespace. They are left empty.
	Outside []string
	// Digest is the BLAKE3 tree digest of generated/ after staging.
	Digest string
}

// Synchronizer makes the generated tree reflect one archive.
//
// Every client folder named by the archive is cleared from the index and the
// filesystem, then the namespace is extracted in one pass and each folder is
// staged again. Folders outside the namespace stay empty. Folders missing
// from the archive are left alone.
type Synchronizer struct {
	Workspace Workspace
	Repo      *git.Repo
	Extractor *archive.Extractor
	Namespace string
	Logger    *log.Logger
}

// NewSynchronizer wires a synchronizer for ws on top of runner.
func NewSynchronizer(ws Workspace, runner exec.Runner, namespace string, logger *log.Logger) *Synchronizer {
	return &Synchronizer{
		Workspace: ws,
		Repo:      git.New(ws.Root, runner),
		Extractor: &archive.Extractor{Runner: runner, Dir: ws.Root},
		Namespace: namespace,
		Logger:    log.OrDefault(logger),
	}
}

// ClearTargets removes each folder from git and the filesystem and recreates
// it empty. It returns the destinations in folder order.
func (s *Synchronizer) ClearTargets(ctx context.Context, folders []archive.ClientFolder) ([]string, error) {
	targets := make([]string, 0, len(folders))
	for _, folder := range folders {
		dest := s.Workspace.Destination(folder)
		if err := s.Repo.RemoveRecursive(ctx, dest); err != nil {
			return nil, err
		}
		if err := os.MkdirAll(s.Workspace.Abs(dest), 0o755); err != nil {
			return nil, errors.NewDirectoryError(dest, err)
		}
		s.Logger.Debug("cleared target", "target", dest)
		targets = append(targets, dest)
	}
	return targets, nil
}

// ApplyArchive extracts the namespace of archivePath into generated/.
func (s *Synchronizer) ApplyArchive(ctx context.Context, archivePath string) error {
	abs, err := filepath.Abs(archivePath)
	if err != nil {
		return errors.NewConfigInvalidError("generator_artifacts.sources_zip", archivePath, err.Error())
	}
	dest := s.Workspace.Generated()
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return errors.NewDirectoryError(dest, err)
	}
	s.Logger.Debug("extracting archive", "archive", abs, "namespace", s.Namespace)
	return s.Extractor.Extract(ctx, abs, dest, s.Namespace)
}

// StageTargets adds every destination to the index.
func (s *Synchronizer) StageTargets(ctx context.Context, targets []string) error {
	for _, dest := range targets {
		if err := s.Repo.Add(ctx, dest); err != nil {
			return err
		}
	}
	return nil
}

// Sync runs ClearTargets, ApplyArchive and StageTargets. With no folders it
// touches nothing.
func (s *Synchronizer) Sync(ctx context.Context, archivePath string, folders []archive.ClientFolder) (*Report, error) {
	if len(folders) == 0 {
		s.Logger.Info("archive carries no client folders, nothing to stage")
		return &Report{}, nil
	}

	targets, err := s.ClearTargets(ctx, folders)
	if err != nil {
		return nil, err
	}
	if err := s.ApplyArchive(ctx, archivePath); err != nil {
		return nil, err
	}
	if err := s.StageTargets(ctx, targets); err != nil {
		return nil, err
	}

	var outside []string
	for i, folder := range folders {
		if folder.Language() != s.Namespace {
			outside = append(outside, targets[i])
			s.Logger.Warn("client folder outside the extracted namespace left empty",
				"target", targets[i], "namespace", s.Namespace)
		}
	}

	digest, err := TreeDigest(s.Workspace.Generated())
	if err != nil {
		return nil, err
	}
	s.Logger.Info("staged client folders", "count", len(targets), "digest", digest)
	return &Report{Targets: targets, Outside: outside, Digest: digest}, nil
}

// Package staging replaces generated client folders inside the staging
// repository working tree.
package staging

import (
	"path/filepath"

	"github.com/felixgeelhaar/clientstage/internal/archive"
)

// GeneratedDir is the workspace subdirectory the archive is unpacked into.
const GeneratedDir = "generated"

// Workspace is the git working tree a run owns exclusively.
type Workspace struct {
	Root string
}

// Generated returns the absolute path of the generated tree.
func (w Workspace) Generated() string {
	return filepath.Join(w.Root, GeneratedDir)
}

// Destination returns the cleaned workspace-relative path a client folder
// is staged at, e.g. "generated/java/clientA".
func (w Workspace) Destination(folder archive.ClientFolder) string {
	return filepath.Join(GeneratedDir, string(folder))
}

// Abs resolves a workspace-relative path.
func (w Workspace) Abs(rel string) string {
	return filepath.Join(w.Root, rel)
}

// NamespaceDir returns the absolute path of one extracted namespace.
func (w Workspace) NamespaceDir(namespace string) string {
	return filepath.Join(w.Generated(), namespace)
}

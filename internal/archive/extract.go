package archive

import (
	"context"

	"github.com/felixgeelhaar/clientstage/internal/exec"
)

// Extractor unpacks one namespace of an archive.
type Extractor struct {
	Runner exec.Runner
	Dir    string
}

// NamespacePattern is the tar wildcard selecting every entry under namespace.
func NamespacePattern(namespace string) string {
	return "./" + namespace + "/*"
}

// Extract unpacks every entry under ./<namespace>/ into dest, preserving
// permissions. dest must exist.
func (e *Extractor) Extract(ctx context.Context, archivePath, dest, namespace string) error {
	_, err := e.Runner.Run(ctx, exec.Command{
		Name: "tar",
		Args: []string{"-pxzf", archivePath, "-C", dest, "--wildcards", NamespacePattern(namespace)},
		Dir:  e.Dir,
	})
	return err
}

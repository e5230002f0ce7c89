// Package output writes the result artifact of a staging run.
package output

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/clientstage/internal/errors"
)

// FileName is the artifact name inside the output directory.
const FileName = "output.yaml"

// Artifact is the result handed to the next pipeline step.
type Artifact struct {
	PRURL string `yaml:"pr_url"`
}

// Writer owns <Dir>/output.yaml.
type Writer struct {
	Dir  string
	Mode os.FileMode

	// chmod replaces (*os.File).Chmod in tests.
	chmod func(f *os.File, mode os.FileMode) error
}

// Path returns the artifact path.
func (w *Writer) Path() string {
	return filepath.Join(w.Dir, FileName)
}

// Clear removes an artifact left by an earlier run.
func (w *Writer) Clear() error {
	if err := os.Remove(w.Path()); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "cannot remove stale artifact "+w.Path(), err)
	}
	return nil
}

// Write replaces the artifact atomically and applies Mode.
func (w *Writer) Write(a Artifact) (string, error) {
	data, err := yaml.Marshal(a)
	if err != nil {
		return "", errors.NewFileWriteError(w.Path(), err)
	}

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", errors.NewDirectoryError(w.Dir, err)
	}

	tmp, err := os.CreateTemp(w.Dir, ".output-*.yaml")
	if err != nil {
		return "", errors.NewFileWriteError(w.Path(), err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", errors.NewFileWriteError(w.Path(), err)
	}
	// Explicit chmod so the umask does not apply. It happens before the
	// rename: a failed write never leaves an artifact behind.
	chmod := w.chmod
	if chmod == nil {
		chmod = (*os.File).Chmod
	}
	if err := chmod(tmp, w.Mode); err != nil {
		tmp.Close()
		return "", errors.NewFileWriteError(w.Path(), err)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.NewFileWriteError(w.Path(), err)
	}
	if err := os.Rename(tmp.Name(), w.Path()); err != nil {
		return "", errors.NewFileWriteError(w.Path(), err)
	}
	return w.Path(), nil
}

// Read loads an artifact, mainly for tests and downstream tooling.
func Read(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a Artifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

package exec

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeebo/blake3"
)

// maxStderrTail bounds the stderr kept per command in a manifest.
const maxStderrTail = 4096

// CommandRecord is the audit entry for one external command
type CommandRecord struct {
	Command  []string `json:"command"`
	Dir      string   `json:"dir,omitempty"`
	ExitCode int      `json:"exit_code"`
	Duration string   `json:"duration"`
	Stderr   string   `json:"stderr,omitempty"`
}

// Transcript collects command records in execution order.
type Transcript struct {
	mu      sync.Mutex
	records []CommandRecord
}

// Record appends one command outcome.
func (t *Transcript) Record(cmd Command, res *Result) {
	rec := CommandRecord{
		Command:  cmd.Argv(),
		Dir:      cmd.Dir,
		ExitCode: res.ExitCode,
		Duration: res.Duration.String(),
	}
	if res.ExitCode != 0 {
		rec.Stderr = tail(res.Stderr, maxStderrTail)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, rec)
}

// Records returns a copy of the recorded commands.
func (t *Transcript) Records() []CommandRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]CommandRecord, len(t.records))
	copy(out, t.records)
	return out
}

// RunManifest is the audit log for one staging run
type RunManifest struct {
	Timestamp    time.Time         `json:"timestamp"`
	RunID        string            `json:"run_id"`
	Success      bool              `json:"success"`
	Error        string            `json:"error,omitempty"`
	Commands     []CommandRecord   `json:"commands"`
	TreeDigest   string            `json:"tree_digest,omitempty"`
	OutputHashes map[string]string `json:"output_hashes"`
}

// NewManifest creates an empty manifest for a run.
func NewManifest(runID string) *RunManifest {
	return &RunManifest{
		Timestamp:    time.Now().UTC(),
		RunID:        runID,
		OutputHashes: make(map[string]string),
	}
}

// SaveManifest writes a run manifest to dir and returns its path.
func SaveManifest(manifest *RunManifest, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create manifest directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.json",
		manifest.Timestamp.Format("20060102_150405"),
		manifest.RunID)
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}

	return path, nil
}

// HashFile computes the BLAKE3 hash of a file
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// AddOutputHash adds an output file hash to the manifest
func (m *RunManifest) AddOutputHash(name, path string) error {
	hash, err := HashFile(path)
	if err != nil {
		return err
	}
	m.OutputHashes[name] = hash
	return nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hadassaviagens/riobot/internal/models"
)

// Constants for the file sink
const (
	// DefaultDirPermissions defines the default permissions for sink directories
	DefaultDirPermissions = 0755
	// DefaultFilePermissions defines the default permissions for the lead file
	DefaultFilePermissions = 0644
)

// FileSink rewrites the full lead sequence to a single JSON file on every
// capture. One file per process, no append log.
type FileSink struct {
	path string
}

// NewFileSink creates a file sink writing to path, creating the parent
// directory if needed.
func NewFileSink(path string) (*FileSink, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create lead file directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create lead file directory: %w", err)
	}
	slog.Debug("FileSink created", "path", path)
	return &FileSink{path: path}, nil
}

// Name identifies this sink in logs and outcomes.
func (f *FileSink) Name() string {
	return "leads-file"
}

// SaveLead writes the full snapshot as pretty-printed JSON.
func (f *FileSink) SaveLead(ctx context.Context, lead models.Lead, all []models.Lead) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal leads: %w", err)
	}
	if err := os.WriteFile(f.path, data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.path, err)
	}
	slog.Debug("FileSink wrote lead file", "path", f.path, "count", len(all))
	return nil
}

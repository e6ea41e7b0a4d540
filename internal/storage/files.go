// Package storage keeps dashboards as JSON files in a directory, one file per
// dashboard, as an offline stand-in for the dashboard service.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/AD7six/ebs-dash/internal/logging"
)

const (
	// maxJSONFileSize dashboard bodies are limited to 1MB so use that as a cut
	// off to avoid reading invalid, extremely large, files
	maxJSONFileSize = 1024 * 1024 // 1MB

	fileExt = ".json"
)

// ErrDashboardNotFound is returned by GetDashboard for a missing file.
var ErrDashboardNotFound = errors.New("dashboard not found")

// IndentJSON returns body indented by two spaces with a trailing newline.
func IndentJSON(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// WriteJSONFile writes the JSON document body to path with indentation.
// Creates the parent directory if it doesn't exist.
func WriteJSONFile(path string, body []byte) error {
	indented, err := IndentJSON(body)
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, indented, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// ReadJSONFile returns the compacted JSON document stored at path.
func ReadJSONFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxJSONFileSize {
		return nil, fmt.Errorf("file %s is too large (%d bytes, max %d)", path, info.Size(), maxJSONFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to parse JSON in %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

// FileStore stores dashboards as DIR/<name>.json.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. The directory is created on
// the first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the file a dashboard name is stored in.
func (s *FileStore) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid dashboard name %q", name)
	}
	return filepath.Join(s.dir, name+fileExt), nil
}

// ListDashboards returns the sorted names of stored dashboards starting with
// prefix. A missing directory holds no dashboards. Oversized files are listed
// too so cleanup can remove them; GetDashboard refuses to read them.
func (s *FileStore) ListDashboards(_ context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), fileExt)
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// GetDashboard returns the compact body of the named dashboard.
func (s *FileStore) GetDashboard(_ context.Context, name string) ([]byte, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	body, err := ReadJSONFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDashboardNotFound, name)
	}
	return body, err
}

// PutDashboard writes body, replacing any previous version.
func (s *FileStore) PutDashboard(ctx context.Context, name string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := WriteJSONFile(path, body); err != nil {
		return fmt.Errorf("failed to write dashboard %s: %w", name, err)
	}
	logging.Logger.Debug("wrote dashboard file", "path", path)
	return nil
}

// DeleteDashboard removes the named dashboard. A missing file counts as
// deleted.
func (s *FileStore) DeleteDashboard(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete dashboard %s: %w", name, err)
	}
	return nil
}

// Package file stores chart record sets as files in a directory, one file
// per chart.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/pfc/pkg/ports"
	"github.com/aretw0/pfc/pkg/schema"
)

// Store implements ports.ChartStore using the local filesystem.
type Store struct {
	BasePath string
	codec    schema.Codec
	ext      string
}

// Option configures a Store.
type Option func(*Store)

// WithCodec selects the file format. The file extension follows the codec.
func WithCodec(codec schema.Codec) Option {
	return func(s *Store) {
		s.codec = codec
		s.ext = "." + codec.Name()
	}
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".pfc/charts". Files are YAML unless
// WithCodec says otherwise.
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = filepath.Join(".pfc", "charts")
	}
	s := &Store{BasePath: basePath, codec: schema.YAML, ext: ".yaml"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ports.ErrInvalidName, name)
	}
	return filepath.Join(s.BasePath, name+s.ext), nil
}

// Save writes the record set atomically: the data goes to a temporary file
// in the same directory, is synced, and is then renamed over the
// destination.
func (s *Store) Save(ctx context.Context, rec *schema.Chart) error {
	destPath, err := s.path(rec.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure chart directory: %w", err)
	}

	data, err := schema.Encode(s.codec, rec)
	if err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(s.BasePath, ".tmp-"+rec.Name+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", destPath, err)
	}
	return nil
}

// Load reads and validates the record set stored under name.
func (s *Store) Load(ctx context.Context, name string) (*schema.Chart, error) {
	filePath, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ports.ErrChartNotFound, name)
		}
		return nil, fmt.Errorf("failed to read chart file: %w", err)
	}
	rec, err := schema.Decode(s.codec, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return rec, nil
}

// Delete removes the chart file.
func (s *Store) Delete(ctx context.Context, name string) error {
	filePath, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete chart file: %w", err)
	}
	return nil
}

// List returns the names of the chart files in the directory.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list charts: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != s.ext {
			continue
		}
		names = append(names, strings.TrimSuffix(name, s.ext))
	}
	slices.Sort(names)
	return names, nil
}

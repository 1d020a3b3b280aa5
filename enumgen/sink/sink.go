// Package sink provides output destinations for generated Go files.
package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// GeneratedMarker identifies files argenum owns. FilesystemSink refuses to
// replace an existing file that does not start with it.
var GeneratedMarker = []byte("// Code generated by argenum. DO NOT EDIT.")

// OutputSink receives generated file content.
// Implementations MUST be safe for concurrent calls.
type OutputSink interface {
	// WriteFile writes content to the specified path.
	// The path is relative; the sink determines the actual location.
	WriteFile(ctx context.Context, path string, content []byte) error
}

// FilesystemSink writes into a directory on the local filesystem,
// typically the directory of the package the enums belong to.
type FilesystemSink struct {
	// Root is the base directory for all writes.
	Root string

	// Mode is the file permission mode (default: 0644).
	Mode os.FileMode

	// Force allows replacing files that were not generated by argenum.
	Force bool
}

// NewFilesystemSink creates a new FilesystemSink writing to the specified root directory.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{
		Root: root,
		Mode: 0644,
	}
}

// CanWrite reports why WriteFile would refuse path without writing
// anything: the path is invalid or names an existing file argenum did not
// generate.
func (s *FilesystemSink) CanWrite(path string) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	fullPath := filepath.Join(s.Root, filepath.FromSlash(path))
	_, err := s.owned(fullPath)
	return err
}

// owned reads the file at fullPath and fails if it exists and is not ours.
// A nil slice means the file does not exist.
func (s *FilesystemSink) owned(fullPath string) ([]byte, error) {
	existing, err := os.ReadFile(fullPath)
	switch {
	case err == nil:
		if !s.Force && !bytes.HasPrefix(existing, GeneratedMarker) {
			return nil, fmt.Errorf("refusing to overwrite %s: not generated by argenum", fullPath)
		}
		return existing, nil
	case errors.Is(err, os.ErrNotExist):
		return nil, nil
	default:
		return nil, fmt.Errorf("failed to read existing file: %w", err)
	}
}

// WriteFile writes content to path within the root directory using a temp
// file and rename. Writing identical content is a no-op so repeated
// go generate runs leave modification times alone.
func (s *FilesystemSink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath := filepath.Join(s.Root, filepath.FromSlash(path))

	existing, err := s.owned(fullPath)
	if err != nil {
		return err
	}
	if existing != nil && bytes.Equal(existing, content) {
		return nil
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	mode := s.Mode
	if mode == 0 {
		mode = 0644
	}

	tempFile, err := os.CreateTemp(dir, ".argenum-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := func() {
		_ = os.Remove(tempPath)
	}

	_, writeErr := tempFile.Write(content)
	closeErr := tempFile.Close()
	if writeErr != nil {
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", writeErr)
	}
	if closeErr != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file: %w", closeErr)
	}

	if err := os.Chmod(tempPath, mode); err != nil {
		cleanup()
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := ctx.Err(); err != nil {
		cleanup()
		return err
	}

	if err := os.Rename(tempPath, fullPath); err != nil {
		cleanup()
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// MemorySink stores generated files in memory.
// All operations are thread-safe.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySink creates a new MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		files: make(map[string][]byte),
	}
}

// WriteFile writes content to the in-memory store.
func (s *MemorySink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = bytes.Clone(content)
	return nil
}

// Files returns a copy of all written files.
func (s *MemorySink) Files() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]byte, len(s.files))
	for path, content := range s.files {
		result[path] = bytes.Clone(content)
	}
	return result
}

// Paths returns the written paths in sorted order.
func (s *MemorySink) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Get returns the content of a single file, or nil if not found.
func (s *MemorySink) Get(path string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.files[path]
	if !ok {
		return nil
	}
	return bytes.Clone(content)
}

// Reset clears all stored files.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string][]byte)
}

// Logging wraps next so every write is logged with its size and duration.
func Logging(next OutputSink, logger *slog.Logger) OutputSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingSink{next: next, logger: logger}
}

type loggingSink struct {
	next   OutputSink
	logger *slog.Logger
}

func (s *loggingSink) WriteFile(ctx context.Context, path string, content []byte) error {
	start := time.Now()
	err := s.next.WriteFile(ctx, path, content)
	duration := time.Since(start)

	if err != nil {
		s.logger.ErrorContext(ctx, "write failed",
			slog.String("path", path),
			slog.Duration("duration", duration),
			slog.Any("error", err),
		)
		return err
	}
	s.logger.InfoContext(ctx, "wrote file",
		slog.String("path", path),
		slog.Int("bytes", len(content)),
		slog.Duration("duration", duration),
	)
	return nil
}

// ValidatePath checks if a path is valid for output.
// Paths MUST be relative, slash-separated, clean, free of ".." components,
// and name a .go file.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New("path is empty")
	}

	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return errors.New("absolute paths not allowed")
	}

	// Windows drive letters are rejected on every platform.
	if len(path) >= 2 && path[1] == ':' && ((path[0] >= 'A' && path[0] <= 'Z') || (path[0] >= 'a' && path[0] <= 'z')) {
		return errors.New("absolute paths not allowed")
	}

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return errors.New("path traversal not allowed")
		}
	}

	cleaned := filepath.ToSlash(filepath.Clean(path))
	if cleaned != filepath.ToSlash(path) {
		return fmt.Errorf("path is not clean (expected %q, got %q)", cleaned, path)
	}

	if !strings.HasSuffix(path, ".go") {
		return errors.New("generated files must have a .go extension")
	}
	if strings.HasSuffix(path, "_test.go") {
		return errors.New("generated files must not be test files")
	}

	return nil
}

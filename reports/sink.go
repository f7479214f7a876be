package reports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Sink is an abstract persistence target accepting a named byte payload.
// Write returns a location string identifying where the payload landed.
type Sink interface {
	Write(ctx context.Context, name string, data []byte) (string, error)
}

// DirSink persists payloads as files under a directory.
type DirSink struct {
	dir string
}

// NewDirSink creates the directory if needed and returns a sink writing
// into it.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	return &DirSink{dir: dir}, nil
}

// Write stores the payload under the sink directory and returns the path.
func (s *DirSink) Write(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}
	return path, nil
}

// MemorySink keeps payloads in memory. Intended for tests and for running
// the service without filesystem persistence.
type MemorySink struct {
	mu       sync.Mutex
	files    map[string][]byte
	writeErr error
}

// NewMemorySink returns an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// FailWith makes every subsequent Write return err.
func (s *MemorySink) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Write stores the payload under name and returns "mem://<name>".
func (s *MemorySink) Write(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return "", s.writeErr
	}
	s.files[name] = append([]byte(nil), data...)
	return "mem://" + name, nil
}

// Get returns a stored payload by name.
func (s *MemorySink) Get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	return data, ok
}

// Len returns the number of stored payloads.
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Defaults used by OpenFile.
const (
	DefaultMaxSize    = 10 << 20 // 10 MiB
	DefaultMaxBackups = 3
)

// RotatingFile is an io.WriteCloser that appends to path and rotates it to
// path.1 .. path.N once a write would exceed maxSize.
type RotatingFile struct {
	mu sync.Mutex

	path       string
	maxSize    int64
	maxBackups int

	file *os.File
	size int64
}

// OpenFile opens path with DefaultMaxSize and DefaultMaxBackups.
func OpenFile(path string) (*RotatingFile, error) {
	return NewRotatingFile(path, DefaultMaxSize, DefaultMaxBackups)
}

// NewRotatingFile creates a RotatingFile. maxSize is in bytes; a value <= 0
// means DefaultMaxSize. maxBackups <= 0 truncates on rotation instead of
// keeping old files.
func NewRotatingFile(path string, maxSize int64, maxBackups int) (*RotatingFile, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if maxBackups < 0 {
		maxBackups = 0
	}

	rf := &RotatingFile{
		path:       path,
		maxSize:    maxSize,
		maxBackups: maxBackups,
	}
	if err := rf.open(); err != nil {
		return nil, err
	}
	return rf, nil
}

// Path returns the active log file path.
func (rf *RotatingFile) Path() string {
	return rf.path
}

func (rf *RotatingFile) open() error {
	if err := os.MkdirAll(filepath.Dir(rf.path), 0o750); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	// Logs may carry hostnames and usernames; keep them owner-only.
	f, err := os.OpenFile(rf.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}

	rf.file = f
	rf.size = info.Size()
	return nil
}

// Write implements io.Writer. A single write larger than maxSize is still
// written whole, into a fresh file.
func (rf *RotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.file == nil {
		return 0, os.ErrClosed
	}

	if rf.size > 0 && rf.size+int64(len(p)) > rf.maxSize {
		if err := rf.rotate(); err != nil {
			return 0, fmt.Errorf("rotate log: %w", err)
		}
	}

	n, err := rf.file.Write(p)
	rf.size += int64(n)
	return n, err
}

// rotate shifts path.i to path.i+1, drops the oldest and reopens path.
// Must be called with mu held.
func (rf *RotatingFile) rotate() error {
	if err := rf.file.Close(); err != nil {
		return err
	}
	rf.file = nil

	if rf.maxBackups == 0 {
		if err := os.Remove(rf.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove log: %w", err)
		}
		return rf.open()
	}

	oldest := backupName(rf.path, rf.maxBackups)
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove old backup: %w", err)
	}

	for i := rf.maxBackups - 1; i >= 1; i-- {
		if err := os.Rename(backupName(rf.path, i), backupName(rf.path, i+1)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("rename backup: %w", err)
		}
	}

	if err := os.Rename(rf.path, backupName(rf.path, 1)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rotate current log: %w", err)
	}
	return rf.open()
}

func backupName(path string, i int) string {
	return fmt.Sprintf("%s.%d", path, i)
}

// Close implements io.Closer.
func (rf *RotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.file == nil {
		return nil
	}
	err := rf.file.Close()
	rf.file = nil
	return err
}

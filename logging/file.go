package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const maxFileAge = 24 * time.Hour

// RotatingFile is an io.WriteCloser that starts a new file once the current
// one would grow past its size limit or has been open for a day. Retired
// files are gzipped in the background and only the newest archives are kept.
type RotatingFile struct {
	mu        sync.Mutex
	path      string
	maxBytes  int64
	keep      int
	file      *os.File
	size      int64
	openedAt  time.Time
	archiving sync.WaitGroup
}

// OpenRotatingFile opens dir/name for appending. Zero limits fall back to
// 10 MB per file and 5 archives.
func OpenRotatingFile(dir, name string, maxMB, keep int) (*RotatingFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	if maxMB <= 0 {
		maxMB = 10
	}
	if keep <= 0 {
		keep = 5
	}
	rf := &RotatingFile{
		path:     filepath.Join(dir, name),
		maxBytes: int64(maxMB) << 20,
		keep:     keep,
	}
	if err := rf.open(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *RotatingFile) open() error {
	f, err := os.OpenFile(rf.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	rf.file = f
	rf.size = info.Size()
	rf.openedAt = time.Now()
	return nil
}

// Write appends p, rotating first when p would overflow a non-empty file.
func (rf *RotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	overflow := rf.size > 0 && rf.size+int64(len(p)) > rf.maxBytes
	if overflow || time.Since(rf.openedAt) > maxFileAge {
		if err := rf.rotateLocked(); err != nil {
			return 0, err
		}
	}
	n, err := rf.file.Write(p)
	rf.size += int64(n)
	return n, err
}

func (rf *RotatingFile) rotateLocked() error {
	if err := rf.file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	retired := rf.path + "." + time.Now().Format("20060102-150405.000000")
	if err := os.Rename(rf.path, retired); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("retire log file: %w", err)
	}

	rf.archiving.Add(1)
	go func() {
		defer rf.archiving.Done()
		if err := gzipAndRemove(retired); err == nil {
			rf.prune()
		}
	}()
	return rf.open()
}

func gzipAndRemove(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(dst)
	_, err = io.Copy(zw, src)
	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path + ".gz")
		return err
	}
	return os.Remove(path)
}

// prune deletes the oldest archives beyond the retention count. Archive names
// embed a sortable timestamp.
func (rf *RotatingFile) prune() {
	archives, err := filepath.Glob(rf.path + ".*.gz")
	if err != nil || len(archives) <= rf.keep {
		return
	}
	sort.Strings(archives)
	for _, old := range archives[:len(archives)-rf.keep] {
		os.Remove(old)
	}
}

// Close waits for background archiving and closes the current file.
func (rf *RotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	rf.archiving.Wait()
	return rf.file.Close()
}

// Package filex contains small filesystem helpers used by the CLI: locating
// the local database directory and reading attachment files.
package filex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrFileTooLarge is returned by ReadAttachment for files above the limit.
var ErrFileTooLarge = errors.New("file too large")

// EnsureSubdDir creates dirName under the working directory when missing and
// returns its absolute path.
func EnsureSubdDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// ResolveDataFile places a bare file name inside dataDir (created on demand).
// Paths with a directory component are returned unchanged.
func ResolveDataFile(dataDir, name string) (string, error) {
	if filepath.Base(name) != name {
		return name, nil
	}
	dir, err := EnsureSubdDir(dataDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ReadAttachment reads the file at path, refusing anything over maxBytes.
// It returns the base name alongside the contents.
func ReadAttachment(path string, maxBytes int64) (string, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > maxBytes {
		return "", nil, fmt.Errorf("%s: %w (limit %d bytes)", path, ErrFileTooLarge, maxBytes)
	}
	return filepath.Base(path), data, nil
}

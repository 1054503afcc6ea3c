//go:build !windows

// Package xos provides atomic file writes for the files the runner owns
// outright, like its configuration file.
package xos

import (
	"os"

	"github.com/google/renameio/v2"
)

// WriteFile writes data to the named file atomically using rename.
// If the file does not exist, WriteFile creates it with permissions perm;
// otherwise it's replaced.
func WriteFile(filename string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(filename, data, perm)
}

// WriteFileWithBackup writes data to a file, keeping a copy of the original
// with a .bak extension.
func WriteFileWithBackup(filename string, data []byte, perm os.FileMode) error {
	if err := backup(filename, perm); err != nil {
		return err
	}
	return WriteFile(filename, data, perm)
}

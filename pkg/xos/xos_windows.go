//go:build windows

// Package xos provides atomic file writes for the files the runner owns
// outright, like its configuration file.
// On Windows, we use a fallback approach since atomic rename across
// drives is not always possible.
package xos

import (
	"os"
	"path/filepath"
)

// WriteFile writes data to the named file.
// On Windows, this uses a temp file + rename approach within the same directory.
func WriteFile(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tempName, perm); err != nil {
		return err
	}

	// The target has to be removed first on Windows
	if _, err := os.Stat(filename); err == nil {
		if err := os.Remove(filename); err != nil {
			return err
		}
	}

	if err := os.Rename(tempName, filename); err != nil {
		return err
	}

	success = true
	return nil
}

// WriteFileWithBackup writes data to a file, keeping a copy of the original
// with a .bak extension.
func WriteFileWithBackup(filename string, data []byte, perm os.FileMode) error {
	if err := backup(filename, perm); err != nil {
		return err
	}
	return WriteFile(filename, data, perm)
}

package xos

import "os"

// backup copies filename to filename.bak when it exists.
func backup(filename string, perm os.FileMode) error {
	original, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return WriteFile(filename+".bak", original, perm)
}

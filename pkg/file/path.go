package file

import (
	"os"
	"path/filepath"
)

// PathExists checks if the given path exists.
func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// PathExistOrCreate creates the directory at the given path if it does not exist.
func PathExistOrCreate(path string) error {
	exist, err := PathExists(path)
	if err != nil || exist {
		return err
	}
	return os.MkdirAll(path, 0o755)
}

// OpenAppend opens dir/name for appending, creating both when missing.
func OpenAppend(dir, name string) (*os.File, error) {
	if err := PathExistOrCreate(dir); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
}

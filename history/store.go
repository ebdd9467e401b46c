package history

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tjswar/medilookapp/interfaces"
)

// Compile-time check to ensure FileStore implements BlobStore
var _ interfaces.BlobStore = (*FileStore)(nil)

// FileStore keeps one blob in a single file. Saves go through a temporary file
// in the same directory followed by a rename, so readers never see a partial
// write.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The parent directory is created
// on the first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (fs *FileStore) Path() string {
	return fs.path
}

// Load reads the blob. A missing file returns an error wrapping os.ErrNotExist.
func (fs *FileStore) Load() ([]byte, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fs.path, err)
	}
	return data, nil
}

// Save replaces the blob.
func (fs *FileStore) Save(data []byte) error {
	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(fs.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Rename(tmpName, fs.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", fs.path, err)
	}
	return nil
}

// Delete removes the blob. Deleting a missing blob is not an error.
func (fs *FileStore) Delete() error {
	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", fs.path, err)
	}
	return nil
}

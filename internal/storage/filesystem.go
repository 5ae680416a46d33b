package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/EdwardBetts/librephotos/internal/domain"
)

// FileStore persists generated artifacts onto the local filesystem, one
// namespace per principal. It is intended for environments where an object
// storage service is not available.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Namespace returns the output directory for a principal's generated
// artifacts. The directory is not created here; Resolve does that lazily.
func (s *FileStore) Namespace(principal string) (string, error) {
	cleaned, err := sanitizeComponent(principal)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, cleaned, "generated"), nil
}

// WriteAtomic publishes data at path with publish-or-nothing semantics: the
// bytes are staged in a temporary file in the target directory and linked
// into place. Linking fails when path already exists, so a lost naming race
// surfaces as an error instead of clobbering the other artifact. Nothing is
// left behind when any step fails.
func (s *FileStore) WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("storage: stage artifact: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close artifact: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("storage: chmod artifact: %w", err)
	}
	if err := os.Link(tmpName, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("storage: %s already exists: %w", path, domain.ErrStorageFailure)
		}
		return fmt.Errorf("storage: publish artifact: %w", err)
	}
	return nil
}

// ReadArtifact loads a previously generated artifact from the principal's
// namespace. The artifact identifier is its base file name; a missing
// extension defaults to .jpg. Returns domain.ErrReferenceNotFound when the
// file does not exist.
func (s *FileStore) ReadArtifact(principal, artifactID string) ([]byte, error) {
	dir, err := s.Namespace(principal)
	if err != nil {
		return nil, err
	}
	name, err := sanitizeComponent(artifactID)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(name) == "" {
		name += artifactExt
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrReferenceNotFound
		}
		return nil, fmt.Errorf("storage: read artifact: %w", err)
	}
	return data, nil
}

// sanitizeComponent rejects path components that would escape the storage
// root.
func sanitizeComponent(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("storage: name is required")
	}
	name = strings.ReplaceAll(name, "\\", "/")
	cleaned := filepath.Clean(name)
	if cleaned == "." || cleaned == ".." || strings.Contains(cleaned, "/") {
		return "", fmt.Errorf("storage: invalid name %q", name)
	}
	return cleaned, nil
}

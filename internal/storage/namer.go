package storage

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const artifactExt = ".jpg"

// maxBaseNameLength keeps prompt-derived file names within common filesystem
// limits.
const maxBaseNameLength = 120

// Resolve picks a collision-free artifact path inside dir for the desired
// base name, creating dir when absent. When <dir>/<base>.jpg is already
// taken, a fresh 32-hex-character token replaces the base name. The
// existence check is best effort; WriteAtomic is what actually refuses to
// overwrite if two workers resolve the same path concurrently.
func (s *FileStore) Resolve(dir, desired string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure namespace: %w", err)
	}
	base := BaseName(desired)
	path := filepath.Join(dir, base+artifactExt)
	if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		return path, nil
	} else if err != nil {
		return "", fmt.Errorf("storage: stat %s: %w", path, err)
	}
	token := uuid.New()
	return filepath.Join(dir, hex.EncodeToString(token[:])+artifactExt), nil
}

// BaseName turns free-form prompt text into a safe artifact base name. The
// text is NFKC-normalized, path separators and control characters are
// stripped, and overly long names are truncated. An empty result falls back
// to a random token.
func BaseName(desired string) string {
	normalized := norm.NFKC.String(desired)
	var b strings.Builder
	for _, r := range normalized {
		switch {
		case r == '/' || r == '\\' || r == os.PathSeparator:
			b.WriteRune('-')
		case unicode.IsControl(r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	name := strings.TrimSpace(b.String())
	name = strings.TrimLeft(name, ".")
	if len(name) > maxBaseNameLength {
		// Cut on a rune boundary so multi-byte prompts never yield a
		// name with a torn final character.
		cut := maxBaseNameLength
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = strings.TrimSpace(name[:cut])
	}
	if name == "" {
		token := uuid.New()
		name = hex.EncodeToString(token[:])
	}
	return name
}

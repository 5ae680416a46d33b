package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"
)

// Asset is one artifact to bundle into an archive.
type Asset struct {
	Filename string
	Data     []byte
}

// ArchiveAssets packs the assets into a single zip. Any entry failure aborts
// the whole archive; a partial bundle would look like a successful download
// with artifacts silently missing.
func ArchiveAssets(assets []Asset) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	now := time.Now()
	for _, asset := range assets {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     asset.Filename,
			Method:   zip.Deflate,
			Modified: now,
		})
		if err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("zip: create entry %s: %w", asset.Filename, err)
		}
		if _, err := w.Write(asset.Data); err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("zip: write entry %s: %w", asset.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

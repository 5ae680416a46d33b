package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/EdwardBetts/librephotos/internal/middleware"
	"github.com/EdwardBetts/librephotos/pkg/zip"
)

// ArtifactsArchive streams every artifact in the principal's namespace as a
// single zip download.
func (a *App) ArtifactsArchive(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	dir, err := a.Store.Namespace(principal)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid principal")
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			a.error(w, http.StatusNotFound, "not_found", "no artifacts generated yet")
			return
		}
		a.Logger.Error().Err(err).Msg("api: list artifacts failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list artifacts")
		return
	}

	var assets []zip.Asset
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			a.Logger.Warn().Err(err).Str("artifact", entry.Name()).Msg("api: skipping unreadable artifact")
			continue
		}
		assets = append(assets, zip.Asset{Filename: entry.Name(), Data: data})
	}
	if len(assets) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no artifacts generated yet")
		return
	}

	archive, err := zip.ArchiveAssets(assets)
	if err != nil {
		a.Logger.Error().Err(err).Msg("api: building archive failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="generated.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

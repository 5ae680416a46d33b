package handlers

import (
	"net/http"
	"time"
)

// Health reports liveness. It deliberately avoids touching the job store or
// artifact storage so a degraded dependency never flaps the process itself.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

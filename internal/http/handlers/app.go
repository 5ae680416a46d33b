package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/EdwardBetts/librephotos/internal/domain"
	"github.com/EdwardBetts/librephotos/internal/infra"
	"github.com/EdwardBetts/librephotos/internal/storage"
)

// Submitter is the dispatcher surface the handlers need.
type Submitter interface {
	Submit(req domain.GenerationRequest) (string, error)
}

type App struct {
	Logger     infra.Logger
	Jobs       domain.JobRepository
	Dispatcher Submitter
	Store      *storage.FileStore
}

func NewApp(logger infra.Logger, jobs domain.JobRepository, dispatcher Submitter, store *storage.FileStore) *App {
	return &App{Logger: logger, Jobs: jobs, Dispatcher: dispatcher, Store: store}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"error": code, "message": message})
}

package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidPrompt     = errors.New("invalid prompt")
	ErrInvalidPrincipal  = errors.New("invalid principal")
	ErrReferenceNotFound = errors.New("reference artifact not found")
	ErrQueueFull         = errors.New("job queue full")
	ErrDispatcherStopped = errors.New("dispatcher stopped")
	ErrProviderFailure   = errors.New("provider failure")
	ErrStorageFailure    = errors.New("storage failure")
)

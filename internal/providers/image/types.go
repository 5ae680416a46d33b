package image

import "context"

// GenerateRequest describes a normalized request passed to a generator.
type GenerateRequest struct {
	Prompt    string
	RequestID string
}

// Asset represents one generated image.
type Asset struct {
	Format string
	Width  int
	Height int
	Data   []byte
}

// Generator is the contract implemented by all image backends. Both calls
// are synchronous; the caller decides where they run.
type Generator interface {
	// Generate produces an image from prompt text alone.
	Generate(ctx context.Context, req GenerateRequest) (Asset, error)

	// GenerateFromReference produces an image conditioned on a seed image.
	// The seed must already be normalized to the backend's expected input
	// geometry.
	GenerateFromReference(ctx context.Context, req GenerateRequest, seed []byte) (Asset, error)
}

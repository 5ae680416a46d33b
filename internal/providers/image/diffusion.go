package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/EdwardBetts/librephotos/internal/domain"
	"github.com/EdwardBetts/librephotos/internal/infra"
)

// Options controls how the diffusion client is configured.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// DiffusionClient talks to a Stable Diffusion web API (txt2img/img2img
// endpoints). The server owns model loading, device placement and safety
// filtering; from here both calls are plain synchronous HTTP exchanges.
type DiffusionClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewDiffusionClient validates the options and builds a client.
func NewDiffusionClient(opts Options) (*DiffusionClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("diffusion: base url is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}
	return &DiffusionClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     opts.Logger,
	}, nil
}

type txt2imgRequest struct {
	Prompt string `json:"prompt"`
}

type img2imgRequest struct {
	Prompt     string   `json:"prompt"`
	InitImages []string `json:"init_images"`
}

type generationResponse struct {
	Images []string `json:"images"`
}

// Generate renders an image from prompt text alone.
func (c *DiffusionClient) Generate(ctx context.Context, req GenerateRequest) (Asset, error) {
	payload := txt2imgRequest{Prompt: req.Prompt}
	return c.invoke(ctx, "/sdapi/v1/txt2img", req.RequestID, payload)
}

// GenerateFromReference renders an image conditioned on the seed image.
func (c *DiffusionClient) GenerateFromReference(ctx context.Context, req GenerateRequest, seed []byte) (Asset, error) {
	payload := img2imgRequest{
		Prompt:     req.Prompt,
		InitImages: []string{base64.StdEncoding.EncodeToString(seed)},
	}
	return c.invoke(ctx, "/sdapi/v1/img2img", req.RequestID, payload)
}

func (c *DiffusionClient) invoke(ctx context.Context, endpoint, requestID string, payload any) (Asset, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Asset{}, fmt.Errorf("diffusion: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return Asset{}, fmt.Errorf("diffusion: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	if c.logger != nil {
		c.logger.Debug().Str("request_id", requestID).Str("endpoint", endpoint).Msg("diffusion: invoking")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Asset{}, fmt.Errorf("diffusion: %s: %v: %w", endpoint, err, domain.ErrProviderFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Asset{}, fmt.Errorf("diffusion: %s returned %d: %s: %w", endpoint, resp.StatusCode, strings.TrimSpace(string(snippet)), domain.ErrProviderFailure)
	}

	var decoded generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Asset{}, fmt.Errorf("diffusion: decode response: %v: %w", err, domain.ErrProviderFailure)
	}
	if len(decoded.Images) == 0 {
		return Asset{}, fmt.Errorf("diffusion: %s returned no images: %w", endpoint, domain.ErrProviderFailure)
	}
	data, err := base64.StdEncoding.DecodeString(decoded.Images[0])
	if err != nil {
		return Asset{}, fmt.Errorf("diffusion: decode image payload: %v: %w", err, domain.ErrProviderFailure)
	}

	if c.logger != nil {
		c.logger.Info().
			Str("request_id", requestID).
			Str("endpoint", endpoint).
			Int("bytes", len(data)).
			Dur("elapsed", time.Since(started)).
			Msg("diffusion: image ready")
	}
	return Asset{Format: "image/jpeg", Data: data}, nil
}

var _ Generator = (*DiffusionClient)(nil)

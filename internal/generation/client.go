// Package generation talks to the external generator service. Shotline only
// constructs and dispatches requests derived from a shot's ordering; the
// generator's model semantics are its own business.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shotline/shotline/internal/models"
)

// Frame is one positioned image handed to the generator, in timeline order.
type Frame struct {
	EntryID   uuid.UUID `json:"entry_id"`
	AssetPath string    `json:"asset_path"`
	Position  int       `json:"position"`
}

// Request is one generation call: the whole shot for batch mode, an adjacent
// pair for pairwise mode.
type Request struct {
	JobID       uuid.UUID             `json:"job_id"`
	ShotID      uuid.UUID             `json:"shot_id"`
	Mode        models.GenerationMode `json:"mode"`
	AspectRatio *string               `json:"aspect_ratio,omitempty"`
	Frames      []Frame               `json:"frames"`
}

// Generator dispatches a generation request.
type Generator interface {
	Generate(ctx context.Context, req Request) error
}

// HTTPGenerator posts requests to a configured generator endpoint.
type HTTPGenerator struct {
	url    string
	apiKey string
	client *http.Client
}

func NewHTTPGenerator(url, apiKey string) *HTTPGenerator {
	return &HTTPGenerator{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *HTTPGenerator) Generate(ctx context.Context, req Request) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("generator request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("generator returned status %d", resp.StatusCode)
	}
	return nil
}

// NoopGenerator logs requests instead of dispatching them. Used when no
// generator endpoint is configured.
type NoopGenerator struct{}

func (NoopGenerator) Generate(ctx context.Context, req Request) error {
	log.Printf("[generation] no generator configured, dropping %s job %s (%d frames)",
		req.Mode, req.JobID, len(req.Frames))
	return nil
}

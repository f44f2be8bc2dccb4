package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/soundcanvas/soundcanvas-api/internal/logger"
)

// RendererClient calls the MIDI-to-WAV rendering service.
type RendererClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRendererClient returns a client for the renderer at baseURL. Rendering
// can take a while, so the timeout is generous.
func NewRendererClient(baseURL string) *RendererClient {
	return &RendererClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type renderRequest struct {
	MidiPath   string  `json:"midi_path"`
	OutputPath string  `json:"output_path"`
	Reverb     float64 `json:"reverb"`
	MoodScore  float64 `json:"mood_score"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Render asks the service to render midiPath into a WAV at outputPath.
func (c *RendererClient) Render(ctx context.Context, midiPath, outputPath string, reverb, mood float64) error {
	body, err := json.Marshal(renderRequest{
		MidiPath:   midiPath,
		OutputPath: outputPath,
		Reverb:     reverb,
		MoodScore:  mood,
	})
	if err != nil {
		return fmt.Errorf("failed to encode render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Info("Rendering MIDI to audio", logger.Fields{
		"midi_path":   midiPath,
		"output_path": outputPath,
	})

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach renderer service: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("renderer service returned status %d", res.StatusCode)
	}

	var decoded statusResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("failed to decode renderer response: %w", err)
	}
	if decoded.Status != "success" {
		return fmt.Errorf("renderer failed: %s", decoded.Message)
	}
	return nil
}

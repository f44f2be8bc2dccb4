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

// ProducerClient calls the stem mixing and mastering service.
type ProducerClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewProducerClient returns a client for the producer at baseURL. Mixing and
// mastering a full track can take minutes.
func NewProducerClient(baseURL string) *ProducerClient {
	return &ProducerClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// ProduceRequest describes one mixdown job.
type ProduceRequest struct {
	Stems            map[string]string `json:"stems"`
	OutputPath       string            `json:"output_path"`
	Genre            string            `json:"genre"`
	ApplyMastering   bool              `json:"apply_mastering"`
	ApplySidechain   bool              `json:"apply_sidechain"`
	SidechainTargets []string          `json:"sidechain_targets"`
}

type produceResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	LUFS        float64 `json:"lufs"`
	DurationSec float64 `json:"duration_sec"`
	StemsCount  int     `json:"stems_count"`
}

// Produce mixes the given stems into a mastered track.
func (c *ProducerClient) Produce(ctx context.Context, req ProduceRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode produce request: %w", err)
	}

	logger.Info("Producing track from stems", logger.Fields{
		"stems":     len(req.Stems),
		"genre":     req.Genre,
		"mastering": req.ApplyMastering,
		"sidechain": req.ApplySidechain,
	})

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/produce", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build produce request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to reach producer service: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("producer service returned status %d", res.StatusCode)
	}

	var decoded produceResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("failed to decode producer response: %w", err)
	}
	if decoded.Status != "success" {
		return fmt.Errorf("producer failed: %s", decoded.Message)
	}

	logger.Info("Track produced", logger.Fields{
		"lufs":         decoded.LUFS,
		"duration_sec": decoded.DurationSec,
		"stems_mixed":  decoded.StemsCount,
	})
	return nil
}

// HealthCheck reports whether the producer service is up.
func (c *ProducerClient) HealthCheck(ctx context.Context) bool {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return false
	}

	var decoded struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return false
	}
	return decoded.Status == "healthy"
}

// Package clients holds the HTTP clients for the collaborator services: the
// TF-Serving control model, the MIDI renderer and the audio producer.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/soundcanvas/soundcanvas-api/internal/logger"
	"github.com/soundcanvas/soundcanvas-api/internal/models"
	"github.com/soundcanvas/soundcanvas-api/internal/music"
)

// ModelClient calls the TF-Serving predict endpoint that maps image features
// to the musical control vector.
type ModelClient struct {
	predictURL string
	httpClient *http.Client
}

// NewModelClient returns a client for a TF-Serving predict URL, e.g.
// http://localhost:8501/v1/models/soundcanvas:predict.
func NewModelClient(predictURL string) *ModelClient {
	return &ModelClient{
		predictURL: predictURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type predictRequest struct {
	Instances [][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
}

// Predict sends the 8-dim feature vector and decodes the 7-dim control
// vector. Shape errors and transport failures both surface as errors; the
// caller falls back to the heuristic mapping.
func (c *ModelClient) Predict(ctx context.Context, f models.ImageFeatures) (models.ControlVector, error) {
	payload := predictRequest{
		Instances: [][]float64{{
			f.AvgR, f.AvgG, f.AvgB, f.Brightness,
			f.Hue, f.Saturation, f.Colorfulness, f.Contrast,
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return models.ControlVector{}, fmt.Errorf("failed to encode predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.predictURL, bytes.NewReader(body))
	if err != nil {
		return models.ControlVector{}, fmt.Errorf("failed to build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return models.ControlVector{}, fmt.Errorf("failed to reach model service: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return models.ControlVector{}, fmt.Errorf("model service returned status %d", res.StatusCode)
	}

	var decoded predictResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return models.ControlVector{}, fmt.Errorf("failed to decode predict response: %w", err)
	}
	if len(decoded.Predictions) == 0 || len(decoded.Predictions[0]) < 7 {
		return models.ControlVector{}, fmt.Errorf("model prediction has wrong shape")
	}

	pred := decoded.Predictions[0]
	return models.ControlVector{
		TempoBPM:      pred[0],
		BaseFrequency: pred[1],
		Energy:        pred[2],
		Brightness:    pred[3],
		Reverb:        pred[4],
		ScaleType:     int(pred[5]),
		PatternType:   int(pred[6]),
	}, nil
}

// ControlsFor returns the model prediction, or the heuristic mapping when the
// model service is down or misbehaving.
func (c *ModelClient) ControlsFor(ctx context.Context, f models.ImageFeatures) models.ControlVector {
	if c == nil || c.predictURL == "" {
		return music.MapFeaturesToControls(f)
	}

	control, err := c.Predict(ctx, f)
	if err != nil {
		logger.Warn("Model prediction failed, using heuristic mapping", logger.Fields{
			"error": err.Error(),
		})
		return music.MapFeaturesToControls(f)
	}
	return control
}

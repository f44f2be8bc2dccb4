package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundcanvas/soundcanvas-api/internal/models"
	"github.com/soundcanvas/soundcanvas-api/internal/music"
)

func TestPredict(t *testing.T) {
	var gotInstances [][]float64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Instances [][]float64 `json:"instances"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotInstances = req.Instances

		json.NewEncoder(w).Encode(map[string]any{
			"predictions": [][]float64{{110.0, 220.0, 0.6, 0.7, 0.3, 1.0, 2.0}},
		})
	}))
	defer server.Close()

	client := NewModelClient(server.URL)
	feats := models.ImageFeatures{
		AvgR: 0.1, AvgG: 0.2, AvgB: 0.3, Brightness: 0.2,
		Hue: 0.4, Saturation: 0.5, Colorfulness: 0.001, Contrast: 0.6,
	}

	control, err := client.Predict(context.Background(), feats)
	require.NoError(t, err)

	// Features are sent in canonical order.
	require.Len(t, gotInstances, 1)
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.2, 0.4, 0.5, 0.001, 0.6}, gotInstances[0])

	assert.Equal(t, 110.0, control.TempoBPM)
	assert.Equal(t, 220.0, control.BaseFrequency)
	assert.Equal(t, 0.6, control.Energy)
	assert.Equal(t, 1, control.ScaleType)
	assert.Equal(t, 2, control.PatternType)
}

func TestPredict_BadShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"predictions": [][]float64{{1.0, 2.0}}})
	}))
	defer server.Close()

	client := NewModelClient(server.URL)
	_, err := client.Predict(context.Background(), models.ImageFeatures{})
	assert.Error(t, err)
}

func TestPredict_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewModelClient(server.URL)
	_, err := client.Predict(context.Background(), models.ImageFeatures{})
	assert.Error(t, err)
}

func TestControlsFor_FallsBackWithoutURL(t *testing.T) {
	feats := models.ImageFeatures{Brightness: 0.5, Saturation: 0.4, Contrast: 0.6}
	want := music.MapFeaturesToControls(feats)

	assert.Equal(t, want, NewModelClient("").ControlsFor(context.Background(), feats))

	var nilClient *ModelClient
	assert.Equal(t, want, nilClient.ControlsFor(context.Background(), feats))
}

func TestControlsFor_FallsBackOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	feats := models.ImageFeatures{Brightness: 0.5, Saturation: 0.4, Contrast: 0.6}
	control := NewModelClient(server.URL).ControlsFor(context.Background(), feats)
	assert.Equal(t, music.MapFeaturesToControls(feats), control)
}

func TestControlsFor_UsesModelWhenHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"predictions": [][]float64{{95.0, 165.0, 0.4, 0.5, 0.2, 2.0, 0.0}},
		})
	}))
	defer server.Close()

	control := NewModelClient(server.URL).ControlsFor(context.Background(), models.ImageFeatures{})
	assert.Equal(t, 95.0, control.TempoBPM)
	assert.Equal(t, 2, control.ScaleType)
}

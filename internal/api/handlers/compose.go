package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soundcanvas/soundcanvas-api/internal/clients"
	"github.com/soundcanvas/soundcanvas-api/internal/config"
	"github.com/soundcanvas/soundcanvas-api/internal/features"
	"github.com/soundcanvas/soundcanvas-api/internal/logger"
	"github.com/soundcanvas/soundcanvas-api/internal/metrics"
	"github.com/soundcanvas/soundcanvas-api/internal/models"
	"github.com/soundcanvas/soundcanvas-api/internal/music"
)

// CompositionHandler serves the composition endpoints: full MIDI files,
// per-track stems and the genre catalog.
type CompositionHandler struct {
	cfg      *config.Config
	cw       *metrics.Client
	model    *clients.ModelClient
	renderer *clients.RendererClient
	producer *clients.ProducerClient
}

func NewCompositionHandler(cfg *config.Config, cw *metrics.Client, model *clients.ModelClient, renderer *clients.RendererClient, producer *clients.ProducerClient) *CompositionHandler {
	return &CompositionHandler{cfg: cfg, cw: cw, model: model, renderer: renderer, producer: producer}
}

var sentryMetrics = metrics.NewSentryMetrics()

// resolveSpec turns a request into a SongSpec plus the control vector it was
// derived from. Requests with features (given or extracted) go through the
// genre pipeline; controls-only requests take the direct path.
func (h *CompositionHandler) resolveSpec(c *gin.Context, req models.CompositionRequest) (music.SongSpec, []music.PlannedSection, models.ControlVector, bool) {
	var feats models.ImageFeatures
	hasFeatures := false

	switch {
	case req.Features != nil:
		feats = *req.Features
		hasFeatures = true
	case req.ImagePath != "":
		extracted, err := features.ExtractFromFile(req.ImagePath)
		if err != nil {
			logger.Error("Feature extraction failed", err, logger.WithContext(c))
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to extract features: %v", err)})
			return music.SongSpec{}, nil, models.ControlVector{}, false
		}
		feats = extracted
		hasFeatures = true
	case req.Controls == nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": "one of features, image_path or controls is required"})
		return music.SongSpec{}, nil, models.ControlVector{}, false
	}

	var control models.ControlVector
	if req.Controls != nil {
		control = *req.Controls
	} else {
		control = h.model.ControlsFor(c.Request.Context(), feats)
	}

	// Controls-only requests without a genre take the legacy direct path.
	if !hasFeatures && req.Genre == "" {
		return music.SpecFromControls(feats, control), nil, control, true
	}

	var genre music.Genre
	if req.Genre != "" {
		parsed, err := music.ParseGenre(req.Genre)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return music.SongSpec{}, nil, models.ControlVector{}, false
		}
		genre = parsed
	} else {
		genre = music.SelectGenre(feats, control.Energy)
	}

	profile, err := music.Lookup(genre)
	if err != nil {
		logger.Error("Genre lookup failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return music.SongSpec{}, nil, models.ControlVector{}, false
	}

	plan := music.PlanSong(control, profile)
	logger.Info("Song planned", logger.Fields{
		"request_id": c.GetString("request_id"),
		"genre":      plan.GenreName,
		"tempo_bpm":  plan.TempoBPM,
		"total_bars": plan.TotalBars,
		"tracks":     len(plan.ActiveRoles),
	})

	return music.PlanToSpec(plan), plan.Sections, control, true
}

func seedOrDefault(seed int64) int64 {
	if seed == 0 {
		return music.DefaultSeed
	}
	return seed
}

// Compose handles POST /api/v1/compositions.
func (h *CompositionHandler) Compose(c *gin.Context) {
	var req models.CompositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	spec, planned, control, ok := h.resolveSpec(c, req)
	if !ok {
		return
	}
	seed := seedOrDefault(req.Seed)
	requestID := c.GetString("request_id")

	if err := os.MkdirAll(h.cfg.OutputDir, 0o755); err != nil {
		logger.Error("Failed to create output directory", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create output directory"})
		return
	}
	midiPath := filepath.Join(h.cfg.OutputDir, fmt.Sprintf("composition_%s.mid", requestID))

	start := time.Now()
	err := music.ComposeToFile(spec, midiPath, seed)
	h.cw.RecordComposition(spec.GenreName, time.Since(start), err == nil)
	sentryMetrics.RecordComposition(c.Request.Context(), spec.GenreName, time.Since(start), err == nil)
	if err != nil {
		logger.Error("Failed to write MIDI file", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write MIDI file"})
		return
	}
	logger.LogCompositionRequest(c.Request.Context(), spec.GenreName, time.Since(start), logger.Fields{
		"request_id": requestID,
		"tempo_bpm":  spec.TempoBPM,
		"total_bars": spec.TotalBars,
		"tracks":     len(spec.Tracks),
	})

	audioPath := ""
	rendered := false
	if req.Render {
		audioPath = filepath.Join(h.cfg.OutputDir, fmt.Sprintf("composition_%s.wav", requestID))
		renderErr := h.renderer.Render(c.Request.Context(), midiPath, audioPath, control.Reverb, spec.MoodScore)
		if renderErr != nil {
			logger.Warn("Renderer call failed, returning MIDI only", logger.Fields{
				"request_id": requestID,
				"error":      renderErr.Error(),
			})
			audioPath = ""
		}
		rendered = renderErr == nil
	}

	resp := models.CompositionResponse{
		RequestID: requestID,
		MidiPath:  midiPath,
		AudioPath: audioPath,
		Rendered:  rendered,
		Genre:     spec.GenreName,
		TempoBPM:  spec.TempoBPM,
		Scale:     spec.Scale.String(),
		RootNote:  spec.RootNote,
		TotalBars: spec.TotalBars,
		Seed:      seed,
	}
	for i, sec := range spec.Sections {
		summary := models.SectionSummary{Name: sec.Name, Bars: sec.Bars, Energy: sec.Energy}
		if planned != nil && i < len(planned) {
			summary.HasDrop = planned[i].HasDrop
		}
		resp.Sections = append(resp.Sections, summary)
	}
	for _, t := range spec.Tracks {
		resp.Tracks = append(resp.Tracks, t.Role.String())
	}

	c.JSON(http.StatusOK, resp)
}

// ComposeStems handles POST /api/v1/compositions/stems.
func (h *CompositionHandler) ComposeStems(c *gin.Context) {
	var req models.StemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	spec, _, _, ok := h.resolveSpec(c, req.CompositionRequest)
	if !ok {
		return
	}
	seed := seedOrDefault(req.Seed)
	requestID := c.GetString("request_id")

	stemsDir := filepath.Join(h.cfg.OutputDir, fmt.Sprintf("stems_%s", requestID))
	if err := os.MkdirAll(stemsDir, 0o755); err != nil {
		logger.Error("Failed to create stems directory", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create stems directory"})
		return
	}

	stems, err := music.ComposeToStems(spec, stemsDir, seed)
	if err != nil {
		logger.Error("Failed to write stems", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write stems"})
		return
	}
	h.cw.RecordStemExport(spec.GenreName, len(stems))

	produced := false
	if req.Produce {
		outputPath := filepath.Join(h.cfg.OutputDir, fmt.Sprintf("produced_%s.wav", requestID))
		produceErr := h.producer.Produce(c.Request.Context(), clients.ProduceRequest{
			Stems:            stems,
			OutputPath:       outputPath,
			Genre:            spec.GenreName,
			ApplyMastering:   req.ApplyMastering,
			ApplySidechain:   req.ApplySidechain,
			SidechainTargets: sidechainTargets(spec),
		})
		if produceErr != nil {
			logger.Warn("Producer call failed, returning stems only", logger.Fields{
				"request_id": requestID,
				"error":      produceErr.Error(),
			})
		}
		produced = produceErr == nil
	}

	c.JSON(http.StatusOK, models.StemsResponse{
		RequestID: requestID,
		Stems:     stems,
		Genre:     spec.GenreName,
		TempoBPM:  spec.TempoBPM,
		Seed:      seed,
		Produced:  produced,
	})
}

// sidechainTargets collects the roles the producer should duck under the
// kick, from the genre profile's layer flags.
func sidechainTargets(spec music.SongSpec) []string {
	profile, err := music.Lookup(spec.Genre)
	if err != nil || spec.GenreName == "" {
		return nil
	}

	seen := map[string]bool{}
	var targets []string
	for _, layer := range profile.Layers {
		if !layer.Sidechain {
			continue
		}
		for _, t := range spec.Tracks {
			if t.Name == layer.Role && !seen[t.Role.String()] {
				seen[t.Role.String()] = true
				targets = append(targets, t.Role.String())
			}
		}
	}
	return targets
}

// ListGenres handles GET /api/v1/genres.
func (h *CompositionHandler) ListGenres(c *gin.Context) {
	var out []models.GenreSummary
	for _, g := range music.AllGenres() {
		profile, err := music.Lookup(g)
		if err != nil {
			continue
		}

		summary := models.GenreSummary{
			Name:          profile.Name,
			MinTempo:      profile.MinTempo,
			MaxTempo:      profile.MaxTempo,
			DropThreshold: profile.DropEnergyThreshold,
			UseSwing:      profile.UseSwing,
			SwingAmount:   profile.SwingAmount,
		}
		for _, sec := range profile.Sections {
			summary.Sections = append(summary.Sections, sec.Kind.Name())
		}
		for _, layer := range profile.Layers {
			summary.Layers = append(summary.Layers, layer.Role)
		}
		out = append(out, summary)
	}

	c.JSON(http.StatusOK, gin.H{"genres": out})
}

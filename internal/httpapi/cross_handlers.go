package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ironsheep/image-cross/internal/imaging"
	"github.com/ironsheep/image-cross/internal/logging"
	"github.com/ironsheep/image-cross/internal/pipeline"
)

// artifactsPrefix is the URL prefix artifacts are served under.
const artifactsPrefix = "/artifacts/"

type crossResponse struct {
	ID                    string         `json:"id"`
	OriginalURL           string         `json:"original_url"`
	ProcessedURL          string         `json:"processed_url"`
	HistogramOriginalURL  string         `json:"histogram_original_url"`
	HistogramProcessedURL string         `json:"histogram_processed_url"`
	Width                 int            `json:"width"`
	Height                int            `json:"height"`
	Format                imaging.Format `json:"format"`
	Thickness             int            `json:"thickness"`
	CrossType             string         `json:"cross_type"`
	Color                 string         `json:"color"`
}

func artifactURL(p string) string {
	return path.Join(artifactsPrefix, filepath.Base(p))
}

func newCrossResponse(res *pipeline.Result) crossResponse {
	return crossResponse{
		ID:                    res.ID,
		OriginalURL:           artifactURL(res.Artifacts.Original),
		ProcessedURL:          artifactURL(res.Artifacts.Processed),
		HistogramOriginalURL:  artifactURL(res.Artifacts.HistogramOriginal),
		HistogramProcessedURL: artifactURL(res.Artifacts.HistogramProcessed),
		Width:                 res.Width,
		Height:                res.Height,
		Format:                res.Format,
		Thickness:             res.Thickness,
		CrossType:             res.CrossType,
		Color:                 res.Color,
	}
}

// handleCross accepts a multipart upload and runs it through the pipeline.
//
// Form fields:
//   - image: the uploaded file (JPEG or PNG)
//   - cross_type: "vertical" (plus sign) or "horizontal" (diagonal X)
//   - r, g, b: color channels 0-255, or color: "#RRGGBB"
func (s *Server) handleCross(w http.ResponseWriter, r *http.Request) {
	if s.processor == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("image processing is not configured"))
		return
	}
	limits := s.processor.Config().Limits

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("file size exceeds %d MB", limits.MaxSizeMB))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("no image file provided"))
		return
	}
	defer file.Close()

	variant, err := imaging.ParseCrossVariant(r.FormValue("cross_type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("cross_type must be %q or %q", imaging.CrossTypeVertical, imaging.CrossTypeHorizontal))
		return
	}
	c, err := colorFromForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.processor.Process(r.Context(), file, imaging.CrossSpec{Variant: variant, Color: c})
	if err != nil {
		status := statusForPipelineError(err)
		if status >= http.StatusInternalServerError {
			logging.WithContext(r.Context(), s.logger).Error("image processing failed", "error", err)
			writeError(w, status, errors.New("failed to process image"))
			return
		}
		writeError(w, status, err)
		return
	}

	writeJSON(w, http.StatusCreated, newCrossResponse(result))
}

func statusForPipelineError(err error) int {
	switch {
	case errors.Is(err, imaging.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case imaging.IsValidationError(err), errors.Is(err, imaging.ErrUnsupportedVariant):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// colorFromForm reads the cross color from either the color field or the
// r, g and b fields.
func colorFromForm(r *http.Request) (imaging.RGBColor, error) {
	if hex := strings.TrimSpace(r.FormValue("color")); hex != "" {
		return imaging.ParseHexColor(hex)
	}

	names := []string{"r", "g", "b"}
	var channels [3]int
	provided := 0
	for i, name := range names {
		raw := strings.TrimSpace(r.FormValue(name))
		if raw == "" {
			continue
		}
		provided++
		v, err := strconv.Atoi(raw)
		if err != nil {
			return imaging.RGBColor{}, fmt.Errorf("%w: %s must be an integer", imaging.ErrInvalidColor, name)
		}
		channels[i] = v
	}
	if provided != len(names) {
		return imaging.RGBColor{}, fmt.Errorf("%w: provide r, g and b or color", imaging.ErrInvalidColor)
	}
	return imaging.NewRGBColor(channels[0], channels[1], channels[2])
}

// handleArtifact serves a pipeline artifact. Only names the pipeline
// produces are accepted, so the handler never reaches outside the output
// directory and never lists it.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if s.processor == nil || !pipeline.IsArtifactName(name) {
		writeError(w, http.StatusNotFound, errors.New("artifact not found"))
		return
	}
	http.ServeFile(w, r, filepath.Join(s.processor.Config().OutputDir, name))
}

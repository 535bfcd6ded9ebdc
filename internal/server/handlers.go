package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ironsheep/image-cross/internal/imaging"
	"github.com/ironsheep/image-cross/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_validate", "image_cross").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Info("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_validate":
		return s.handleImageValidate(args)
	case "image_cross":
		return s.handleImageCross(ctx, args)
	case "image_histogram":
		return s.handleImageHistogram(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)
	case "artifacts_cleanup":
		return s.handleArtifactsCleanup(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, dest interface{}) error {
	if len(args) == 0 {
		return errors.New("arguments are required")
	}
	return json.Unmarshal(args, dest)
}

func requirePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path is required")
	}
	return nil
}

// === Validation ===

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageValidate(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	return imaging.Inspect(a.Path, s.processor.Config().Limits)
}

// === Cross ===

type imageCrossArgs struct {
	Path      string `json:"path"`
	CrossType string `json:"cross_type"`
	Color     string `json:"color"`
	R         *int   `json:"r"`
	G         *int   `json:"g"`
	B         *int   `json:"b"`
}

func (a imageCrossArgs) color() (imaging.RGBColor, error) {
	if a.Color != "" {
		return imaging.ParseHexColor(a.Color)
	}
	if a.R == nil || a.G == nil || a.B == nil {
		return imaging.RGBColor{}, fmt.Errorf("%w: provide r, g and b or color", imaging.ErrInvalidColor)
	}
	return imaging.NewRGBColor(*a.R, *a.G, *a.B)
}

func (s *Server) handleImageCross(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageCrossArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	variant, err := imaging.ParseCrossVariant(a.CrossType)
	if err != nil {
		return nil, err
	}
	c, err := a.color()
	if err != nil {
		return nil, err
	}
	return s.processor.ProcessFile(ctx, a.Path, imaging.CrossSpec{Variant: variant, Color: c})
}

// === Histogram ===

type imageHistogramArgs struct {
	Path   string `json:"path"`
	Output string `json:"output,omitempty"`
	Title  string `json:"title,omitempty"`
}

// ChannelSummary condenses one channel of a density histogram.
type ChannelSummary struct {
	Mean        float64 `json:"mean"`
	Peak        int     `json:"peak"`
	PeakDensity float64 `json:"peak_density"`
}

// HistogramResult is returned by the image_histogram tool.
type HistogramResult struct {
	Pixels int            `json:"pixels"`
	Red    ChannelSummary `json:"red"`
	Green  ChannelSummary `json:"green"`
	Blue   ChannelSummary `json:"blue"`
	Chart  string         `json:"chart,omitempty"`
}

func summarizeChannel(dist [imaging.HistogramBins]float64) ChannelSummary {
	var sum ChannelSummary
	for v, d := range dist {
		sum.Mean += float64(v) * d
		if d > sum.PeakDensity {
			sum.Peak = v
			sum.PeakDensity = d
		}
	}
	return sum
}

func (s *Server) handleImageHistogram(args json.RawMessage) (interface{}, error) {
	var a imageHistogramArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}

	img, _, err := imaging.Validate(a.Path, s.processor.Config().Limits)
	if err != nil {
		return nil, err
	}

	h := imaging.ComputeHistogram(img)
	result := &HistogramResult{
		Pixels: h.Pixels,
		Red:    summarizeChannel(h.R),
		Green:  summarizeChannel(h.G),
		Blue:   summarizeChannel(h.B),
	}

	if a.Output != "" {
		title := a.Title
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(a.Path), filepath.Ext(a.Path))
		}
		chart, err := imaging.RenderHistogram(img, a.Output, title)
		if err != nil {
			return nil, err
		}
		result.Chart = chart
	}
	return result, nil
}

// === Color ===

type imageSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	img, _, err := imaging.Validate(a.Path, s.processor.Config().Limits)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(img, a.X, a.Y)
}

// === Retention ===

type artifactsCleanupArgs struct {
	MaxAge string `json:"max_age,omitempty"`
}

// CleanupResult is returned by the artifacts_cleanup tool.
type CleanupResult struct {
	Dir     string   `json:"dir"`
	MaxAge  string   `json:"max_age"`
	Removed []string `json:"removed"`
}

func (s *Server) handleArtifactsCleanup(args json.RawMessage) (interface{}, error) {
	var a artifactsCleanupArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}

	maxAge := s.maxAge
	if a.MaxAge != "" {
		d, err := time.ParseDuration(a.MaxAge)
		if err != nil {
			return nil, fmt.Errorf("invalid max_age: %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("invalid max_age: %s is negative", a.MaxAge)
		}
		maxAge = d
	}

	dir := s.processor.Config().OutputDir
	removed, err := pipeline.CleanOldFiles(dir, maxAge, s.now())
	if err != nil {
		return nil, err
	}
	if removed == nil {
		removed = []string{}
	}
	for i, p := range removed {
		removed[i] = filepath.Base(p)
	}
	return &CleanupResult{Dir: dir, MaxAge: maxAge.String(), Removed: removed}, nil
}

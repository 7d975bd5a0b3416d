package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/image-stitch/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_stitch").
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	case "image_stitch":
		return s.handleImageStitch(args)
	case "image_stitch_preview":
		return s.handleImageStitchPreview(args)
	case "image_stitch_plan":
		return s.handleImageStitchPlan(args)

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

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Stitching Handlers ===

// layoutArgs are shared by every stitching tool.
type layoutArgs struct {
	Paths            []string `json:"paths"`
	Drop             string   `json:"drop"`
	Direction        string   `json:"direction"`
	ReferenceEdge    string   `json:"reference_edge"`
	Spacing          int      `json:"spacing"`
	Background       string   `json:"background"`
	KeepOriginalSize bool     `json:"keep_original_size"`
}

// inputs returns the ordered list of image files named by the arguments.
// Directories are expanded; drop lists are appended after explicit paths.
func (a layoutArgs) inputs() ([]string, error) {
	raw := append([]string{}, a.Paths...)
	raw = append(raw, imaging.SplitDropList(a.Drop)...)
	if len(raw) == 0 {
		return nil, errors.New("paths is required")
	}
	return imaging.ExpandPaths(raw)
}

// config builds the compositor settings. Empty strings select defaults; an
// unparseable background falls back to white.
func (a layoutArgs) config() (imaging.LayoutConfig, error) {
	cfg := imaging.LayoutConfig{
		Spacing:          a.Spacing,
		Background:       imaging.ParseColorOr(a.Background, imaging.White),
		KeepOriginalSize: a.KeepOriginalSize,
	}
	if a.Direction != "" {
		d, err := imaging.ParseDirection(a.Direction)
		if err != nil {
			return cfg, err
		}
		cfg.Direction = d
	}
	if a.ReferenceEdge != "" {
		e, err := imaging.ParseReferenceEdge(a.ReferenceEdge)
		if err != nil {
			return cfg, err
		}
		cfg.ReferenceEdge = e
	}
	return cfg, cfg.Validate()
}

// compose loads the inputs and composites them.
func (s *Server) compose(a layoutArgs) (*imaging.CompositionResult, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	paths, err := a.inputs()
	if err != nil {
		return nil, err
	}
	images, err := imaging.LoadAll(s.cache, paths)
	if err != nil {
		return nil, err
	}
	return imaging.Compose(images, cfg)
}

type imageStitchArgs struct {
	layoutArgs
	OutputPath string `json:"output_path"`
	OutputDir  string `json:"output_dir"`
	Format     string `json:"format"`
	StartIndex int    `json:"start_index"`
	Quality    int    `json:"quality"`
}

// StitchResult describes a finished composition.
type StitchResult struct {
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Placements []imaging.Placement `json:"placements"`

	// OutputPath is set when the composition was written to disk.
	OutputPath string `json:"output_path,omitempty"`

	// ImageBase64 is set when no output location was given.
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
}

func (s *Server) handleImageStitch(args json.RawMessage) (interface{}, error) {
	var a imageStitchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OutputPath != "" && a.OutputDir != "" {
		return nil, errors.New("output_path and output_dir are mutually exclusive")
	}
	if a.Quality == 0 {
		a.Quality = imaging.DefaultQuality
	}
	if a.StartIndex == 0 {
		a.StartIndex = 1
	}

	res, err := s.compose(a.layoutArgs)
	if err != nil {
		return nil, err
	}

	out := &StitchResult{
		Width:      res.Width,
		Height:     res.Height,
		Placements: res.Placements,
	}

	switch {
	case a.OutputPath != "":
		if err := imaging.Save(res.Image, a.OutputPath, a.Quality); err != nil {
			return nil, err
		}
		out.OutputPath = a.OutputPath

	case a.OutputDir != "":
		format := imaging.PNG
		if a.Format != "" {
			if format, err = imaging.ParseFormat(a.Format); err != nil {
				return nil, err
			}
		}
		exp, err := imaging.NewExporter(a.OutputDir, format, a.StartIndex, a.Quality)
		if err != nil {
			return nil, err
		}
		if out.OutputPath, err = exp.Save(res.Image); err != nil {
			return nil, err
		}

	default:
		if out.ImageBase64, err = imaging.EncodePNGBase64(res.Image); err != nil {
			return nil, err
		}
		out.MimeType = "image/png"
	}

	return out, nil
}

type imageStitchPreviewArgs struct {
	layoutArgs
	Scale    float64 `json:"scale"`
	FitWidth int     `json:"fit_width"`
}

func (s *Server) handleImageStitchPreview(args json.RawMessage) (interface{}, error) {
	var a imageStitchPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 0.5
	}

	res, err := s.compose(a.layoutArgs)
	if err != nil {
		return nil, err
	}

	scale := a.Scale
	if a.FitWidth > 0 {
		scale = imaging.FitWidthScale(res.Width, a.FitWidth)
	}
	return imaging.Preview(res.Image, scale)
}

func (s *Server) handleImageStitchPlan(args json.RawMessage) (interface{}, error) {
	var a layoutArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	paths, err := a.inputs()
	if err != nil {
		return nil, err
	}

	sizes := make([]image.Point, len(paths))
	for i, p := range paths {
		dims, err := imaging.GetDimensions(s.cache, p)
		if err != nil {
			return nil, err
		}
		sizes[i] = image.Pt(dims.Width, dims.Height)
	}
	return imaging.Plan(sizes, cfg)
}

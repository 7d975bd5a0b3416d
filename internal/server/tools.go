package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathSchema is the single-file argument of the inspection tools.
func pathSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Absolute path to the image file",
			},
		},
		"required": []string{"path"},
	}
}

// layoutProperties returns the arguments shared by every stitching tool.
// Each call returns a fresh map so callers may add their own properties.
func layoutProperties() map[string]interface{} {
	return map[string]interface{}{
		"paths": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "Image files or directories in stacking order. Directories are expanded recursively in lexical order.",
		},
		"drop": map[string]interface{}{
			"type":        "string",
			"description": "Optional whitespace-separated path list; paths containing spaces are wrapped in braces, e.g. \"{/tmp/my file.png} /tmp/b.png\". Appended after paths.",
		},
		"direction": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"vertical", "horizontal"},
			"description": "Stacking axis: vertical (top to bottom) or horizontal (left to right)",
			"default":     "vertical",
		},
		"reference_edge": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"max", "min"},
			"description": "Scale every image so its cross-axis length equals the largest (max) or smallest (min) input",
			"default":     "max",
		},
		"spacing": map[string]interface{}{
			"type":        "integer",
			"description": "Pixels of background between consecutive images",
			"default":     0,
			"minimum":     0,
		},
		"background": map[string]interface{}{
			"type":        "string",
			"description": "Background colour as #RGB, #RRGGBB or #RRGGBBAA. Invalid values fall back to white",
			"default":     "#FFFFFF",
		},
		"keep_original_size": map[string]interface{}{
			"type":        "boolean",
			"description": "Skip scaling; images keep their size and are aligned to the start of the cross axis",
			"default":     false,
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	stitch := layoutProperties()
	stitch["output_path"] = map[string]interface{}{
		"type":        "string",
		"description": "Write the result here. The extension selects the format (png, jpg, webp, bmp, tiff, gif)",
	}
	stitch["output_dir"] = map[string]interface{}{
		"type":        "string",
		"description": "Write the result into this directory as the next free numbered file (1.png, 2.png, ...)",
	}
	stitch["format"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"png", "jpg", "webp", "bmp", "tiff", "gif"},
		"description": "Output format when output_dir is used",
		"default":     "png",
	}
	stitch["start_index"] = map[string]interface{}{
		"type":        "integer",
		"description": "First number tried when output_dir is used",
		"default":     1,
		"minimum":     1,
	}
	stitch["quality"] = map[string]interface{}{
		"type":        "integer",
		"description": "JPEG/WebP quality (1-100)",
		"default":     95,
	}

	preview := layoutProperties()
	preview["scale"] = map[string]interface{}{
		"type":        "number",
		"description": "Preview scale factor, clamped to 0.05-3.0",
		"default":     0.5,
	}
	preview["fit_width"] = map[string]interface{}{
		"type":        "integer",
		"description": "If set, choose the scale so the preview fits this many pixels wide (overrides scale)",
	}

	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format, colour depth and file size.",
			InputSchema: pathSchema(),
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: pathSchema(),
		},

		// Stitching
		{
			Name:        "image_stitch",
			Description: "Stitch images into one by stacking them vertically or horizontally. Images are scaled to a common width (vertical) or height (horizontal). Saves to output_path or output_dir, otherwise returns the result as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": stitch,
				"required":   []string{"paths"},
			},
		},
		{
			Name:        "image_stitch_preview",
			Description: "Stitch images and return a scaled-down PNG preview of the result as base64.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": preview,
				"required":   []string{"paths"},
			},
		},
		{
			Name:        "image_stitch_plan",
			Description: "Compute the canvas size and where each image would be placed, without rendering anything.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": layoutProperties(),
				"required":   []string{"paths"},
			},
		},
	}
}

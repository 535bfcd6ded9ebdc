package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to a JPEG or PNG image",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_validate",
			Description: "Check an image against the upload rules (JPEG or PNG, size and dimension limits) and report its dimensions, format, file size and the cross thickness that would be used.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_cross",
			Description: "Draw a colored cross on a copy of an image and render RGB histograms of the original and the result. Returns the paths of the four artifacts. cross_type \"vertical\" draws a plus sign, \"horizontal\" draws a diagonal X.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"cross_type": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"vertical", "horizontal"},
						"description": "\"vertical\" for a plus sign, \"horizontal\" for a diagonal X",
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Cross color as #RRGGBB or #RGB. Takes precedence over r, g, b",
					},
					"r": map[string]interface{}{
						"type":        "integer",
						"minimum":     0,
						"maximum":     255,
						"description": "Red channel (0-255)",
					},
					"g": map[string]interface{}{
						"type":        "integer",
						"minimum":     0,
						"maximum":     255,
						"description": "Green channel (0-255)",
					},
					"b": map[string]interface{}{
						"type":        "integer",
						"minimum":     0,
						"maximum":     255,
						"description": "Blue channel (0-255)",
					},
				},
				"required": []string{"path", "cross_type"},
			},
		},
		{
			Name:        "image_histogram",
			Description: "Compute the density-normalized RGB histogram of an image. Returns mean and peak value per channel and optionally writes the histogram chart as PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Optional path for the 1000x600 PNG chart",
					},
					"title": map[string]interface{}{
						"type":        "string",
						"description": "Optional chart title. Defaults to the file name",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the exact color value at a specific pixel coordinate.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "artifacts_cleanup",
			Description: "Remove pipeline artifacts and stale uploads in the artifact directory older than max_age. Other files are left alone.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"max_age": map[string]interface{}{
						"type":        "string",
						"description": "Go duration such as \"24h\" or \"90m\". Defaults to the configured retention",
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}

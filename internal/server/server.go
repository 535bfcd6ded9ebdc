package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ironsheep/image-cross/internal/logging"
	"github.com/ironsheep/image-cross/internal/pipeline"
)

// ProtocolVersion is the MCP revision this server speaks.
const ProtocolVersion = "2024-11-05"

// Server handles MCP protocol communication
type Server struct {
	processor *pipeline.Processor
	logger    *slog.Logger
	version   string
	maxAge    time.Duration
	now       func() time.Time
}

// Options wires the server's collaborators.
type Options struct {
	Processor *pipeline.Processor
	Logger    *slog.Logger
	// Version is reported in serverInfo.
	Version string
	// MaxAge is the default age threshold for artifacts_cleanup.
	MaxAge time.Duration
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// DefaultOutputDir returns the artifact directory used when no processor is
// configured: an image-cross subdirectory of the system temp directory.
func DefaultOutputDir() string {
	return filepath.Join(os.TempDir(), "image-cross")
}

// New creates a new MCP server instance. A nil processor gets one writing to
// DefaultOutputDir.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logging.WithComponent(logger, "mcp")

	proc := opts.Processor
	if proc == nil {
		proc = pipeline.New(pipeline.Config{OutputDir: DefaultOutputDir()}, logger)
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = pipeline.DefaultMaxAge
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	return &Server{
		processor: proc,
		logger:    logger,
		version:   version,
		maxAge:    maxAge,
		now:       time.Now,
	}
}

// Run serves MCP on stdin and stdout until stdin closes or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to w.
// Cancellation is checked between requests.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			if encErr := encoder.Encode(s.errorResponse(nil, -32700, "Parse error", err.Error())); encErr != nil {
				return fmt.Errorf("write response: %w", encErr)
			}
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.logger.Debug("request received", "method", req.Method)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": ProtocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "image-cross",
				"version": s.version,
			},
		},
	}
}

// Package server implements the MCP (Model Context Protocol) server for the
// image cross pipeline.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_validate: Apply the upload rules to a file and report metadata
//   - image_cross: Draw a cross and render both histograms (four artifacts)
//   - image_histogram: Summarize the RGB histogram, optionally render the chart
//   - image_sample_color: Get color at pixel
//   - artifacts_cleanup: Remove artifacts older than a threshold
//
// Artifacts are written to the processor's output directory, the same one
// the HTTP API serves from.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// Lines that are not valid JSON get a -32700 parse error with a null id.
//
// # Usage
//
//	srv := server.New(server.Options{Processor: proc, Logger: logger})
//	if err := srv.Run(ctx); err != nil {
//	    return err
//	}
//
// Logs must go to stderr; stdout carries the protocol.
package server

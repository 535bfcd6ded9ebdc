// Package main provides the entry point for the image-cross CLI.
//
// image-cross validates photos, draws a colored cross on a copy and renders
// RGB histograms of both. It runs as an HTTP service, as an MCP server on
// stdio, or as a one-shot command.
//
// Usage:
//
//	image-cross serve
//	image-cross mcp
//	image-cross process photo.jpg --cross-type vertical --color "#00FF00"
//
// See --help for all available options.
package main

func main() {
	Execute()
}

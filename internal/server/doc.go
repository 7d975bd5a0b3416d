// Package server implements the MCP (Model Context Protocol) server for the
// image stitching tools.
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
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Stitching:
//   - image_stitch: Compose images and save or return the result
//   - image_stitch_preview: Compose images and return a scaled preview
//   - image_stitch_plan: Canvas size and placements only
//
// # Image Caching
//
// Images are cached by path and reused across tool calls. The cache persists
// for the lifetime of the server process, so a file changed on disk is only
// reread after a restart.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New()
//	srv.SetVersion(version)
//	if err := srv.RunIO(ctx, os.Stdin, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
package server

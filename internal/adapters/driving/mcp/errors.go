// Package mcp provides an MCP (Model Context Protocol) server adapter for docrag.
// It lets AI assistants classify queries, ask grounded questions and
// ingest files into the local index.
package mcp

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")

// ErrIngestDisabled is returned by ingestion tools when no ingest service is wired.
var ErrIngestDisabled = errors.New("mcp: ingestion is not available")

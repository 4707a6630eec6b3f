package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
)

// ClassifyInput is the input schema for the classify_intent tool.
type ClassifyInput struct {
	Query string `json:"query" jsonschema:"the question to route"`
}

// ClassifyOutput is the output schema for the classify_intent tool.
type ClassifyOutput struct {
	Intent  domain.IntentResult `json:"intent"`
	Sources []SourceOutput      `json:"sources"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query     string `json:"query" jsonschema:"the question to answer"`
	SessionID string `json:"session_id,omitempty" jsonschema:"continue an existing conversation"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of context segments (default 5)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	SessionID string         `json:"session_id"`
	Answer    string         `json:"answer"`
	Mode      domain.Mode    `json:"mode"`
	Persona   string         `json:"persona"`
	Sources   []SourceOutput `json:"sources"`
}

// SourceOutput references a segment used as context.
type SourceOutput struct {
	DocumentID   string  `json:"document_id"`
	FileName     string  `json:"file_name"`
	ChunkIndex   int     `json:"chunk_index"`
	PageNumber   int     `json:"page_number,omitempty"`
	SectionTitle string  `json:"section_title,omitempty"`
	Score        float64 `json:"score"`
}

// IngestInput is the input schema for the ingest_file tool. Either Path or
// FileName with Content must be given.
type IngestInput struct {
	Path     string `json:"path,omitempty" jsonschema:"local path of the file to index"`
	FileName string `json:"file_name,omitempty" jsonschema:"file name when passing content inline"`
	Content  string `json:"content,omitempty" jsonschema:"inline text content to index"`
}

// IngestOutput is the output schema for the ingest_file tool.
type IngestOutput struct {
	DocumentID string          `json:"document_id"`
	FileName   string          `json:"file_name"`
	Category   domain.Category `json:"category"`
	Strategy   string          `json:"strategy"`
	FellBack   bool            `json:"fell_back"`
	Segments   int             `json:"segments"`
}

// ListDocumentsInput is the (empty) input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []domain.IndexedDocument `json:"documents"`
	Count     int                      `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "classify_intent",
		Description: "Route a question to an assistant persona using retrieved context, without answering it",
	}, s.handleClassify)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question grounded in the indexed documents",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_file",
		Description: "Segment, embed and index a file",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the indexed documents",
	}, s.handleListDocuments)
}

// handleClassify handles the classify_intent tool invocation.
func (s *Server) handleClassify(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ClassifyInput,
) (*mcp.CallToolResult, ClassifyOutput, error) {
	result, retrieved, err := s.ports.Chat.Classify(ctx, input.Query)
	if err != nil {
		return nil, ClassifyOutput{}, err
	}

	sources := make([]SourceOutput, len(retrieved))
	for i, r := range retrieved {
		sources[i] = SourceOutput{
			DocumentID:   r.Metadata.DocumentID,
			FileName:     r.Metadata.FileName,
			ChunkIndex:   r.Metadata.ChunkIndex,
			PageNumber:   r.Metadata.PageNumber,
			SectionTitle: r.Metadata.SectionTitle,
			Score:        r.Score,
		}
	}
	return nil, ClassifyOutput{Intent: *result, Sources: sources}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	resp, err := s.ports.Chat.Ask(ctx, driving.AskRequest{
		SessionID: input.SessionID,
		Query:     input.Query,
		Limit:     input.Limit,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		SessionID: resp.SessionID,
		Answer:    resp.Answer,
		Mode:      resp.Intent.Mode,
		Persona:   resp.Intent.Label,
		Sources:   make([]SourceOutput, len(resp.Sources)),
	}
	for i, src := range resp.Sources {
		output.Sources[i] = SourceOutput(src)
	}
	return nil, output, nil
}

// handleIngest handles the ingest_file tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestOutput{}, ErrIngestDisabled
	}

	fileName, content, err := readInput(input)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	result, err := s.ports.Ingest.Ingest(ctx, fileName, content)
	if err != nil {
		return nil, IngestOutput{}, err
	}
	return nil, IngestOutput{
		DocumentID: result.DocumentID,
		FileName:   result.FileName,
		Category:   result.Category,
		Strategy:   result.Strategy,
		FellBack:   result.FellBack,
		Segments:   len(result.Segments),
	}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Ingest == nil {
		return nil, ListDocumentsOutput{}, ErrIngestDisabled
	}

	docs, err := s.ports.Ingest.ListDocuments(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}
	if docs == nil {
		docs = []domain.IndexedDocument{}
	}
	return nil, ListDocumentsOutput{Documents: docs, Count: len(docs)}, nil
}

// readInput resolves the file name and bytes of an ingest request.
func readInput(input IngestInput) (string, []byte, error) {
	if input.Path != "" {
		content, err := os.ReadFile(input.Path)
		if err != nil {
			return "", nil, fmt.Errorf("reading %s: %w", input.Path, err)
		}
		name := input.FileName
		if name == "" {
			name = filepath.Base(input.Path)
		}
		return name, content, nil
	}
	if input.FileName == "" {
		return "", nil, fmt.Errorf("%w: path or file_name is required", domain.ErrInvalidInput)
	}
	return input.FileName, []byte(input.Content), nil
}

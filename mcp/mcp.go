// Package mcp serves the engine as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pennsieve/cypherqa"
	"github.com/pennsieve/cypherqa/qa"
	"github.com/yaoapp/kun/log"
)

// Version reported to MCP clients
const Version = "0.1.0"

// Backend the session behind the tools
type Backend interface {
	ProcessQuery(ctx context.Context, question string) (*cypherqa.Response, error)
	GuidePaths() []string
	Schema() string
}

// New builds an MCP server exposing query_graph, guide_paths and graph_schema
func New(backend Backend) *server.MCPServer {
	s := server.NewMCPServer("cypherqa", Version, server.WithToolCapabilities(false), server.WithRecovery())

	s.AddTool(mcpgo.NewTool("query_graph",
		mcpgo.WithDescription("Answer a natural-language question about the Pennsieve datasets by generating and running a read-only Cypher query"),
		mcpgo.WithString("question", mcpgo.Required(), mcpgo.Description("The question to answer")),
	), queryGraph(backend))

	s.AddTool(mcpgo.NewTool("guide_paths",
		mcpgo.WithDescription("List the DataGuide paths describing the structure of the graph"),
	), guidePaths(backend))

	s.AddTool(mcpgo.NewTool("graph_schema",
		mcpgo.WithDescription("Show the node labels, relationship types and properties of the graph"),
	), graphSchema(backend))

	return s
}

// ServeStdio serves the tools over stdin and stdout until the client disconnects
func ServeStdio(backend Backend) error {
	return server.ServeStdio(New(backend))
}

func queryGraph(backend Backend) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil {
			return mcpgo.NewToolResultError(err.Error()), nil
		}

		res, err := backend.ProcessQuery(ctx, question)
		if err != nil {
			var summaryErr *qa.SummarizationError
			if res == nil || !errors.As(err, &summaryErr) {
				log.With(log.F{"tool": "query_graph"}).Warn("[MCP] %s", err.Error())
				return mcpgo.NewToolResultError(err.Error()), nil
			}
		}

		rows, err := jsoniter.MarshalToString(res.Rows)
		if err != nil {
			return nil, fmt.Errorf("failed to encode rows: %w", err)
		}

		var b strings.Builder
		if res.Answer != "" {
			b.WriteString(res.Answer)
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Cypher:\n%s\n\nRows:\n%s", res.GeneratedQuery, rows)
		return mcpgo.NewToolResultText(b.String()), nil
	}
}

func guidePaths(backend Backend) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		return mcpgo.NewToolResultText(strings.Join(backend.GuidePaths(), "\n")), nil
	}
}

func graphSchema(backend Backend) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		return mcpgo.NewToolResultText(backend.Schema()), nil
	}
}

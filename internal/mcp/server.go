// Package mcp exposes the matcher and harvester as MCP tools for operator
// tooling.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"profile-registry/backend/internal/services"
	"profile-registry/backend/pkg/models"
)

type Server struct {
	mcpServer *server.MCPServer
	svc       *services.ProfileService
}

func NewServer(svc *services.ProfileService) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Profile Registry",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		svc: svc,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"match_concept",
			mcp.WithDescription("Classify a concept candidate against a profile version"),
			mcp.WithString("profile_iri", mcp.Required(), mcp.Description("The profile IRI")),
			mcp.WithNumber("version", mcp.Required(), mcp.Description("The version number")),
			mcp.WithString("concept", mcp.Required(), mcp.Description("The concept candidate document as JSON")),
		),
		s.handleMatchConcept,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"harvest_statements",
			mcp.WithDescription("Harvest candidate concepts out of raw statements against a draft version"),
			mcp.WithString("profile_iri", mcp.Required(), mcp.Description("The profile IRI")),
			mcp.WithNumber("version", mcp.Required(), mcp.Description("The version number")),
			mcp.WithString("statements", mcp.Required(), mcp.Description("A JSON array of statements")),
		),
		s.handleHarvestStatements,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"import_profile",
			mcp.WithDescription("Import a profile version document"),
			mcp.WithString("document", mcp.Required(), mcp.Description("The profile document as JSON")),
		),
		s.handleImportProfile,
	)
}

func stringArg(request mcp.CallToolRequest, name string) (string, bool) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", false
	}
	value, ok := args[name].(string)
	return value, ok && value != ""
}

func numberArg(request mcp.CallToolRequest, name string) (int, bool) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return 0, false
	}
	value, ok := args[name].(float64)
	return int(value), ok
}

func (s *Server) handleMatchConcept(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileIRI, ok := stringArg(request, "profile_iri")
	if !ok {
		return mcp.NewToolResultError("Missing required parameter: profile_iri"), nil
	}
	version, ok := numberArg(request, "version")
	if !ok {
		return mcp.NewToolResultError("Missing required parameter: version"), nil
	}
	raw, ok := stringArg(request, "concept")
	if !ok {
		return mcp.NewToolResultError("Missing required parameter: concept"), nil
	}
	var doc models.ConceptDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid concept document: %v", err)), nil
	}

	match, err := s.svc.MatchConcept(ctx, doc, profileIRI, version)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to match: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(match)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleHarvestStatements(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profileIRI, ok := stringArg(request, "profile_iri")
	if !ok {
		return mcp.NewToolResultError("Missing required parameter: profile_iri"), nil
	}
	version, ok := numberArg(request, "version")
	if !ok {
		return mcp.NewToolResultError("Missing required parameter: version"), nil
	}
	raw, ok := stringArg(request, "statements")
	if !ok {
		return mcp.NewToolResultError("Missing required parameter: statements"), nil
	}
	var statements []models.StatementDocument
	if err := json.Unmarshal([]byte(raw), &statements); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid statements array: %v", err)), nil
	}

	data, err := s.svc.HarvestStatements(ctx, profileIRI, version, statements)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to harvest: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(data)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleImportProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := stringArg(request, "document")
	if !ok {
		return mcp.NewToolResultError("Missing required parameter: document"), nil
	}
	var doc models.ProfileDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid profile document: %v", err)), nil
	}

	result, err := s.svc.ImportProfile(ctx, doc, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to import: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(result)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}

// Package mcp exposes the viewer over the Model Context Protocol: JSON-RPC
// 2.0 messages, one per line, on stdin and stdout.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
)

const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "ccviewer-mcp"
)

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      any           `json:"id,omitempty"`
	Result  any           `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC 2.0 error.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Standard JSON-RPC error codes
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

// Tool represents an MCP tool that can be called.
type Tool interface {
	Name() string
	Description() string
	InputSchema() json.RawMessage
	Execute(args map[string]any) (any, error)
}

// ToolInfo represents tool metadata for listing.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// Server is the MCP server implementation.
type Server struct {
	tools   map[string]Tool
	mu      sync.RWMutex
	input   io.Reader
	output  io.Writer
	version string
	logger  *slog.Logger
}

// NewServer creates a server on stdin and stdout.
func NewServer(version string, logger *slog.Logger) *Server {
	return NewServerIO(os.Stdin, os.Stdout, version, logger)
}

// NewServerIO creates a server on the given streams.
func NewServerIO(in io.Reader, out io.Writer, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		tools:   make(map[string]Tool),
		input:   in,
		output:  out,
		version: version,
		logger:  logger,
	}
}

// RegisterTool registers a tool with the server.
func (s *Server) RegisterTool(tool Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools[tool.Name()] = tool
}

// Run serves requests until the input ends or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.input)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	encoder := json.NewEncoder(s.output)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req JSONRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			if err := encoder.Encode(s.errorResponse(nil, ParseError, "Parse error", err.Error())); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
			continue
		}
		s.logger.Debug("mcp request", "method", req.Method, "id", req.ID)

		resp := s.handleRequest(&req)
		if resp == nil {
			continue
		}
		if resp.Error != nil {
			s.logger.Debug("mcp error", "method", req.Method, "code", resp.Error.Code, "message", resp.Error.Message)
		}
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}

func (s *Server) handleRequest(req *JSONRPCRequest) *JSONRPCResponse {
	if req.JSONRPC != "2.0" {
		return s.errorResponse(req.ID, InvalidRequest, "Invalid Request", "jsonrpc must be 2.0")
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "initialized", "notifications/initialized":
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return s.successResponse(req.ID, map[string]any{})
	default:
		return s.errorResponse(req.ID, MethodNotFound, "Method not found", req.Method)
	}
}

func (s *Server) handleInitialize(req *JSONRPCRequest) *JSONRPCResponse {
	result := map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    ServerName,
			"version": s.version,
		},
	}
	return s.successResponse(req.ID, result)
}

func (s *Server) handleToolsList(req *JSONRPCRequest) *JSONRPCResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]ToolInfo, 0, len(s.tools))
	for _, tool := range s.tools {
		tools = append(tools, ToolInfo{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: tool.InputSchema(),
		})
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })

	return s.successResponse(req.ID, map[string]any{
		"tools": tools,
	})
}

func (s *Server) handleToolsCall(req *JSONRPCRequest) *JSONRPCResponse {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}

	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, InvalidParams, "Invalid params", err.Error())
	}

	s.mu.RLock()
	tool, ok := s.tools[params.Name]
	s.mu.RUnlock()

	if !ok {
		return s.errorResponse(req.ID, InvalidParams, "Tool not found", params.Name)
	}

	if params.Arguments == nil {
		params.Arguments = map[string]any{}
	}
	result, err := tool.Execute(params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, InternalError, "Tool execution failed", err.Error())
	}

	content := []map[string]any{
		{
			"type": "text",
			"text": formatResult(result),
		},
	}

	return s.successResponse(req.ID, map[string]any{
		"content": content,
	})
}

func formatResult(result any) string {
	if text, ok := result.(string); ok {
		return text
	}
	bytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(bytes)
}

func (s *Server) successResponse(id any, result any) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
}

func (s *Server) errorResponse(id any, code int, message string, data any) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/petal-labs/toolgate/tool"
)

const (
	defaultServerName    = "unified_tool_suite"
	defaultServerVersion = "1.0.0"
	defaultWorkers       = 8

	// maxLineBytes bounds a single request line; fs_read_file results can
	// be large but requests stay small.
	maxLineBytes = 1 << 20
)

// ServerConfig configures a stdio MCP server.
type ServerConfig struct {
	Catalog    *tool.Catalog
	Dispatcher *tool.Dispatcher
	Name       string
	Version    string
	// Workers caps concurrent tools/call executions. Other methods are
	// answered inline by the read loop.
	Workers int
	Logger  *slog.Logger
}

// Server serves the MCP wire protocol over a reader/writer pair.
type Server struct {
	catalog    *tool.Catalog
	dispatcher *tool.Dispatcher
	info       ServerInfo
	workers    int
	logger     *slog.Logger

	writeMu sync.Mutex
	out     io.Writer
}

// NewServer creates a server. Catalog and Dispatcher are required.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("mcp: server requires a catalog")
	}
	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("mcp: server requires a dispatcher")
	}
	name := cfg.Name
	if name == "" {
		name = defaultServerName
	}
	version := cfg.Version
	if version == "" {
		version = defaultServerVersion
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		catalog:    cfg.Catalog,
		dispatcher: cfg.Dispatcher,
		info:       ServerInfo{Name: name, Version: version},
		workers:    workers,
		logger:     logger,
	}, nil
}

// Serve reads newline-delimited JSON-RPC messages from in and writes
// responses to out until in is exhausted or ctx is canceled. Responses may
// interleave across requests; each is written as a single line.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.out = out

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	defer wg.Wait()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			s.logger.Warn("discarding malformed message", "error", err)
			s.writeError(nil, CodeParseError, "Parse error")
			continue
		}

		// Responses and notifications carry no reply.
		if msg.Method == "" {
			continue
		}
		if msg.ID == nil {
			s.handleNotification(msg)
			continue
		}

		switch msg.Method {
		case "initialize":
			s.writeResult(msg.ID, InitializeResult{
				ProtocolVersion: protocolVersion,
				Capabilities:    map[string]any{"tools": map[string]any{}},
				ServerInfo:      s.info,
			})
		case "ping":
			s.writeResult(msg.ID, map[string]any{})
		case "tools/list":
			s.writeResult(msg.ID, s.listTools())
		case "tools/call":
			wg.Add(1)
			sem <- struct{}{}
			go func(msg Message) {
				defer wg.Done()
				defer func() { <-sem }()
				s.handleCall(ctx, msg)
			}(msg)
		default:
			s.writeError(msg.ID, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", msg.Method))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("mcp: read loop: %w", err)
	}
	return nil
}

func (s *Server) handleNotification(msg Message) {
	switch msg.Method {
	case "notifications/initialized":
		s.logger.Debug("client initialized")
	default:
		s.logger.Debug("ignoring notification", "method", msg.Method)
	}
}

func (s *Server) listTools() ToolsListResult {
	defs := s.catalog.All()
	tools := make([]Tool, 0, len(defs))
	for _, def := range defs {
		tools = append(tools, Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.Schema.JSONSchema(),
		})
	}
	return ToolsListResult{Tools: tools}
}

func (s *Server) handleCall(ctx context.Context, msg Message) {
	var params ToolsCallParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			s.writeError(msg.ID, CodeInvalidParams, fmt.Sprintf("Invalid tools/call params: %v", err))
			return
		}
	}

	outcome := s.dispatcher.Dispatch(ctx, params.Name, params.Arguments)
	text, ok := tool.Normalize(outcome)
	if !ok {
		// Every failure kind surfaces as invalid params with a bare
		// message, keeping internals off the wire.
		s.writeError(msg.ID, CodeInvalidParams, outcome.Message)
		return
	}
	s.writeResult(msg.ID, ToolsCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	})
}

func (s *Server) writeResult(id json.RawMessage, result any) {
	data, err := json.Marshal(result)
	if err != nil {
		s.writeError(id, CodeInternalError, "Internal error")
		return
	}
	s.write(Message{JSONRPC: jsonRPCVersion, ID: id, Result: data})
}

func (s *Server) writeError(id json.RawMessage, code int, message string) {
	if id == nil {
		id = json.RawMessage("null")
	}
	s.write(Message{JSONRPC: jsonRPCVersion, ID: id, Error: &RPCError{Code: code, Message: message}})
}

func (s *Server) write(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("encode response", "error", err)
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.out.Write(append(data, '\n')); err != nil {
		s.logger.Error("write response", "error", err)
	}
}

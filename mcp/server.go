// Package mcp implements a line-delimited JSON-RPC 2.0 server for the
// Model Context Protocol tool surface.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "GNS3 MCP Server"
)

// Server drives the stdio transport: one JSON-RPC frame per line in,
// one per line out. Tool calls run concurrently and responses are
// correlated by id, never by position. Diagnostics go to the logger
// only; the output stream carries protocol frames exclusively.
type Server struct {
	registry *Registry
	version  string
	log      *slog.Logger

	in  io.Reader
	enc *json.Encoder

	mu sync.Mutex // protects enc
	wg sync.WaitGroup

	// initialized is only touched from the read loop goroutine.
	initialized bool
}

// NewServer wires a transport loop around the given registry.
func NewServer(version string, registry *Registry, in io.Reader, out io.Writer, logger *slog.Logger) *Server {
	return &Server{
		registry: registry,
		version:  version,
		log:      logger,
		in:       in,
		enc:      json.NewEncoder(out),
	}
}

// Run processes frames until the input stream closes, then waits for
// in-flight tool calls to finish. A clean end of stream returns nil.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Error("failed to parse request", "err", err)
			if id := salvageID(line); id != nil {
				s.write(errorResponse(id, codeParseError, "parse error: "+err.Error()))
			}
			continue
		}
		s.dispatch(ctx, &req)
	}

	err := scanner.Err()
	s.wg.Wait()
	if err != nil {
		return fmt.Errorf("stdin read error: %w", err)
	}
	return nil
}

func (s *Server) dispatch(ctx context.Context, req *request) {
	if strings.HasPrefix(req.Method, "notifications/") {
		s.log.Debug("notification received", "method", req.Method)
		return
	}

	// Nothing but the handshake and liveness checks is served before
	// initialize has been answered; early requests are rejected, not
	// queued.
	if !s.initialized && req.Method != "initialize" && req.Method != "ping" {
		s.write(errorResponse(req.ID, codeNotInitialized, "server not initialized"))
		return
	}

	switch req.Method {
	case "initialize":
		s.initialized = true
		s.write(resultResponse(req.ID, map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    serverName,
				"version": s.version,
			},
		}))

	case "ping":
		s.write(resultResponse(req.ID, map[string]any{}))

	case "tools/list":
		s.write(resultResponse(req.ID, map[string]any{"tools": s.registry.List()}))

	case "tools/call":
		var params struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		}
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				s.write(errorResponse(req.ID, codeInvalidParams, "invalid params: "+err.Error()))
				return
			}
		}
		if params.Name == "" {
			s.write(errorResponse(req.ID, codeInvalidParams, "invalid params: missing tool name"))
			return
		}
		tool, ok := s.registry.Lookup(params.Name)
		if !ok {
			s.write(errorResponse(req.ID, codeMethodNotFound, "tool not found: "+params.Name))
			return
		}
		if params.Arguments == nil {
			params.Arguments = map[string]any{}
		}

		// Each call runs on its own goroutine so a slow backend
		// request cannot delay unrelated calls.
		s.wg.Add(1)
		go s.callTool(ctx, req.ID, tool, params.Arguments)

	default:
		s.write(errorResponse(req.ID, codeMethodNotFound, "method not found: "+req.Method))
	}
}

func (s *Server) callTool(ctx context.Context, id json.RawMessage, tool *Tool, args map[string]any) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("tool handler panicked", "tool", tool.Name, "panic", r)
			s.write(errorResponse(id, codeInternalError, "internal error in tool "+tool.Name))
		}
	}()

	start := time.Now()
	result := s.invoke(ctx, tool, args)
	s.log.Debug("tool call finished", "tool", tool.Name, "duration", time.Since(start))
	s.write(resultResponse(id, result))
}

// invoke validates and runs the tool. Failures come back in the
// result tier, where the calling model can read them; only transport
// problems become protocol errors.
func (s *Server) invoke(ctx context.Context, tool *Tool, args map[string]any) any {
	if err := s.registry.Validate(tool.Name, args); err != nil {
		s.log.Warn("tool arguments rejected", "tool", tool.Name, "err", err)
		return toolFailure(err)
	}
	result, err := tool.Handler(ctx, args)
	if err != nil {
		s.log.Warn("tool call failed", "tool", tool.Name, "err", err)
		return toolFailure(err)
	}
	return result
}

func toolFailure(err error) map[string]any {
	return map[string]any{
		"success": false,
		"error":   err.Error(),
	}
}

func (s *Server) write(resp *response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(resp); err != nil {
		s.log.Error("failed to write response", "err", err)
	}
}

// salvageID pulls the id out of a frame that failed to decode, so the
// parse error can still be correlated. Returns nil when the frame is
// too broken to carry one.
func salvageID(line []byte) json.RawMessage {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(line, &probe); err != nil {
		return nil
	}
	return probe.ID
}

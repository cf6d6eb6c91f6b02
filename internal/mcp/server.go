package mcp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

const ProtocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

type Server struct {
	tools   *ToolRegistry
	version string
	reader  *bufio.Reader
	writer  io.Writer
	logger  *log.Logger
	mu      sync.Mutex
}

type ServerOption func(*Server)

// WithIO replaces stdin/stdout as the transport.
func WithIO(r io.Reader, w io.Writer) ServerOption {
	return func(s *Server) {
		s.reader = bufio.NewReader(r)
		s.writer = w
	}
}

// WithLogger sets where diagnostics go. Stdout carries the protocol, so the
// default logger writes to stderr.
func WithLogger(l *log.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewServer(tools *ToolRegistry, version string, opts ...ServerOption) *Server {
	s := &Server{
		tools:   tools,
		version: version,
		reader:  bufio.NewReader(os.Stdin),
		writer:  os.Stdout,
		logger:  log.New(os.Stderr, "htmlesc-mcp: ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id,omitempty"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc %d: %s", e.Code, e.Message)
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Capabilities advertises only the tools feature; its object is always empty.
type Capabilities struct {
	Tools struct{} `json:"tools"`
}

type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
	Instructions    string       `json:"instructions,omitempty"`
}

type ToolsListResult struct {
	Tools []ToolDef `json:"tools"`
}

type ToolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type CallToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Run serves requests until the reader is exhausted.
func (s *Server) Run() error {
	for {
		line, err := s.reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			s.serveLine(line)
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
	}
}

func (s *Server) serveLine(line []byte) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.reply(nil, nil, &Error{Code: codeParseError, Message: "Parse error", Data: err.Error()})
		return
	}

	result, rpcErr := s.dispatch(&req)
	if req.ID == nil && rpcErr == nil {
		return
	}
	if req.ID == nil {
		s.logger.Printf("ignoring notification %q: %v", req.Method, rpcErr)
		return
	}
	s.reply(req.ID, result, rpcErr)
}

// dispatch returns the result for req. A nil result with a nil error means
// nothing is sent back.
func (s *Server) dispatch(req *Request) (any, *Error) {
	switch req.Method {
	case "initialize":
		return s.initializeResult(), nil
	case "notifications/initialized":
		return nil, nil
	case "tools/list":
		return ToolsListResult{Tools: s.tools.List()}, nil
	case "tools/call":
		return s.callTool(req.Params)
	case "ping":
		return struct{}{}, nil
	default:
		return nil, &Error{Code: codeMethodNotFound, Message: "Method not found", Data: req.Method}
	}
}

func (s *Server) initializeResult() InitializeResult {
	return InitializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo:      ServerInfo{Name: "htmlesc", Version: s.version},
		Instructions: fmt.Sprintf(
			"Escape and unescape HTML character references. The lookup tool covers %d HTML4 named references.",
			s.tools.table.Len()),
	}
}

// callTool reports tool failures inside the result so the client can show
// them; only malformed params are protocol errors.
func (s *Server) callTool(raw json.RawMessage) (any, *Error) {
	var params CallToolParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, &Error{Code: codeInvalidParams, Message: "Invalid params", Data: err.Error()}
	}
	result, err := s.tools.Call(params.Name, params.Arguments)
	if err != nil {
		return CallToolResult{
			Content: []ContentBlock{{Type: "text", Text: err.Error()}},
			IsError: true,
		}, nil
	}
	return result, nil
}

func (s *Server) reply(id any, result any, rpcErr *Error) {
	data, err := json.Marshal(Response{JSONRPC: "2.0", ID: id, Result: result, Error: rpcErr})
	if err != nil {
		s.logger.Printf("marshal response: %v", err)
		return
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.writer.Write(data); err != nil {
		s.logger.Printf("write response: %v", err)
	}
}

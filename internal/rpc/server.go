/*
Package rpc serves the analyzer, the behavior store and the scorer as
line-delimited JSON-RPC 2.0 over stdio, so a host application in any
language can embed intent-rank as a child process.

Methods:
  - analyze: structured reading of a query
  - recommend: rank supplied (or catalog) candidates for a query
  - track: record one interaction
  - behavior.read, behavior.mostViewed, behavior.recentSearches,
    behavior.interests, behavior.affinity, behavior.summary: read behavior
  - behavior.clear, behavior.clearSearches: reset behavior
  - session.id: the persisted client session identifier
*/
package rpc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/khanglvm/intent-rank/internal/behavior"
	"github.com/khanglvm/intent-rank/internal/catalog"
	"github.com/khanglvm/intent-rank/internal/logging"
	"github.com/khanglvm/intent-rank/internal/recommend"
	"github.com/khanglvm/intent-rank/internal/version"
)

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeServerError    = -32000
)

// maxLineSize bounds one request line; candidate lists can be large.
const maxLineSize = 4 * 1024 * 1024

// Deps are the collaborators the server exposes.
type Deps struct {
	Store   *behavior.Store
	Tracker *behavior.Tracker
	Scorer  *recommend.Scorer

	// Catalog is optional. Without it recommend needs explicit candidates.
	Catalog *catalog.Catalog

	// TrackSearches records every recommend query as a search.
	TrackSearches bool
}

// Server handles JSON-RPC requests.
type Server struct {
	deps Deps
	log  zerolog.Logger
}

// NewServer creates a server over deps.
func NewServer(deps Deps) *Server {
	return &Server{
		deps: deps,
		log:  logging.Component("rpc"),
	}
}

// Request represents an incoming JSON-RPC request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents an outgoing JSON-RPC response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents a JSON-RPC error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Run serves stdin/stdout until stdin is closed.
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads one request per line from r and writes one response per
// line to w. It returns when r is exhausted.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	enc := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		resp := s.HandleRequest(line)
		if resp == nil {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}

	if s.deps.Tracker != nil {
		s.deps.Tracker.Flush()
	}
	return scanner.Err()
}

// HandleRequest processes one raw request. Notifications get no response.
func (s *Server) HandleRequest(data []byte) *Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse(nil, CodeParseError, "invalid JSON-RPC request: "+err.Error())
	}
	if req.Method == "" {
		return errorResponse(req.ID, CodeInvalidRequest, "missing method")
	}
	if strings.HasPrefix(req.Method, "notifications/") {
		return nil
	}

	s.log.Debug().Str("method", req.Method).Msg("request")

	result, err := s.dispatch(&req)
	if err != nil {
		if rpcErr, ok := err.(*Error); ok {
			return errorResponse(req.ID, rpcErr.Code, rpcErr.Message)
		}
		s.log.Warn().Err(err).Str("method", req.Method).Msg("request failed")
		return errorResponse(req.ID, CodeServerError, err.Error())
	}

	return &Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func (s *Server) dispatch(req *Request) (interface{}, error) {
	switch req.Method {
	case "initialize":
		return s.handleInitialize()
	case "analyze":
		return s.handleAnalyze(req.Params)
	case "recommend":
		return s.handleRecommend(req.Params)
	case "track":
		return s.handleTrack(req.Params)
	case "behavior.read":
		return s.handleRead()
	case "behavior.mostViewed":
		return s.handleMostViewed(req.Params)
	case "behavior.recentSearches":
		return s.handleRecentSearches(req.Params)
	case "behavior.interests":
		return s.handleInterests(req.Params)
	case "behavior.affinity":
		return s.handleAffinity(req.Params)
	case "behavior.summary":
		return s.handleSummary()
	case "behavior.clear":
		return s.handleClear(false)
	case "behavior.clearSearches":
		return s.handleClear(true)
	case "session.id":
		return s.handleSessionID()
	default:
		return nil, &Error{Code: CodeMethodNotFound, Message: "Method not found: " + req.Method}
	}
}

func (s *Server) handleInitialize() (interface{}, error) {
	return map[string]interface{}{
		"serverInfo": map[string]interface{}{
			"name":  "intent-rank",
			"build": version.Get(),
		},
		"methods": []string{
			"analyze", "recommend", "track",
			"behavior.read", "behavior.mostViewed", "behavior.recentSearches",
			"behavior.interests", "behavior.affinity", "behavior.summary",
			"behavior.clear", "behavior.clearSearches", "session.id",
		},
	}, nil
}

func errorResponse(id interface{}, code int, msg string) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &Error{Code: code, Message: msg},
	}
}

// decodeParams unmarshals params into v. Missing params leave v untouched.
func decodeParams(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &Error{Code: CodeInvalidParams, Message: "invalid params: " + err.Error()}
	}
	return nil
}

func invalidParams(format string, args ...interface{}) error {
	return &Error{Code: CodeInvalidParams, Message: fmt.Sprintf(format, args...)}
}

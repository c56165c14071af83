// Package rpc implements the Snapshot RPC server: a loopback TCP listener
// on an OS-assigned port, a mint-once 128-bit token required on every
// request line, and a line-delimited JSON request/response
// protocol exposing the graph query algebra plus search/get_source/stats.
// Grounded on internal/server IndexServer's listener lifecycle idiom,
// adapted from its Unix-socket HTTP server to a loopback TCP and
// line-delimited JSON contract that needs no HTTP framing.
package rpc

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/codelens-dev/codelens/internal/errs"
	"github.com/codelens-dev/codelens/internal/repo"
)

// Request is one line of the Snapshot RPC protocol.
type Request struct {
	Token  string          `json:"token"`
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the JSON object written back for each Request, one line
// per response. At most one of Result/Error is set; neither is set when a
// query finds nothing (no path, no source, an unknown module).
type Response struct {
	ID     string `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Server is the Snapshot RPC listener.
type Server struct {
	repo  *repo.Repo
	token string
	log   *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New mints a fresh token and returns an unstarted Server bound to repo.
func New(r *repo.Repo, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}
	token, err := mintToken()
	if err != nil {
		return nil, err
	}
	return &Server{repo: r, token: token, log: log}, nil
}

func mintToken() (string, error) {
	buf := make([]byte, 16) // 128 bits
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Token returns the mint-once auth token clients must present.
func (s *Server) Token() string { return s.token }

// Start listens on 127.0.0.1:0 and returns the assigned port. The
// acceptor task spawned here is one-shot: it accepts exactly one
// connection, serves it, and tears the listener down when that
// connection ends.
func (s *Server) Start() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go s.serve(ln)
	return ln.Addr().(*net.TCPAddr).Port, nil
}

// Stop closes the listener, if it is still open (the one-shot acceptor
// may already have torn it down after its single connection ended).
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	s.listener = nil
	return err
}

// serve is the one-shot acceptor task: it accepts exactly one connection,
// serves it to completion, then closes the listener and returns. The
// caller (Start's goroutine) and the listener are torn down together once
// that single invocation completes.
func (s *Server) serve(ln net.Listener) {
	conn, err := ln.Accept()
	if err != nil {
		return
	}
	s.handleConn(conn)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == ln {
		ln.Close()
		s.listener = nil
	}
}

// handleConn reads line-delimited JSON requests and writes line-delimited
// JSON responses. The connection is never dropped for auth failure,
// malformed requests, unknown methods, or pre-index queries; each is
// reported as a normal error Response.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			rpcErr := errs.NewRPCError("", "malformed request: "+err.Error())
			_ = enc.Encode(Response{Error: rpcErr.Error()})
			continue
		}
		if req.Token != s.token {
			rpcErr := errs.NewRPCError(req.Method, "invalid token")
			_ = enc.Encode(Response{ID: req.ID, Error: rpcErr.Error()})
			continue
		}
		result, err := s.dispatch(req)
		if err != nil {
			_ = enc.Encode(Response{ID: req.ID, Error: err.Error()})
			continue
		}
		_ = enc.Encode(Response{ID: req.ID, Result: result})
	}
}

func (s *Server) dispatch(req Request) (any, error) {
	h, ok := s.repo.Handle()
	if !ok {
		return nil, errs.NewRPCError(req.Method, "index not built yet")
	}

	switch req.Method {
	case "find_callers":
		return withName(req, h.Graph.FindCallers)
	case "find_callees":
		return withName(req, h.Graph.FindCallees)
	case "get_dependencies":
		return withFile(req, h.Graph.GetDependencies)
	case "get_dependents":
		return withFile(req, h.Graph.GetDependents)
	case "get_subclasses":
		return withName(req, h.Graph.GetSubclasses)
	case "get_superclasses":
		return withName(req, h.Graph.GetSuperclasses)
	case "find_path":
		var p struct {
			Source string `json:"source"`
			Target string `json:"target"`
		}
		if err := unmarshalParams(req.Params, &p); err != nil {
			return nil, errs.NewRPCError(req.Method, err.Error())
		}
		path := h.Graph.FindPath(p.Source, p.Target, nil)
		if path == nil {
			return nil, nil
		}
		return path, nil
	case "get_related":
		var p struct {
			Element string `json:"element"`
			MaxHops int    `json:"max_hops"`
		}
		if err := unmarshalParams(req.Params, &p); err != nil {
			return nil, errs.NewRPCError(req.Method, err.Error())
		}
		maxHops := p.MaxHops
		if maxHops <= 0 {
			maxHops = 2
		}
		return h.Graph.GetRelated(p.Element, maxHops), nil
	case "search":
		var p struct {
			Query string `json:"query"`
			K     int    `json:"k"`
		}
		if err := unmarshalParams(req.Params, &p); err != nil {
			return nil, errs.NewRPCError(req.Method, err.Error())
		}
		k := p.K
		if k <= 0 {
			k = h.Config.Search.MaxResults
		}
		return h.BM25.Search(p.Query, k), nil
	case "get_source":
		var p struct {
			ElementID string `json:"element_id"`
		}
		if err := unmarshalParams(req.Params, &p); err != nil {
			return nil, errs.NewRPCError(req.Method, err.Error())
		}
		src, ok := h.Graph.GetSource(p.ElementID)
		if !ok {
			return nil, nil
		}
		return src, nil
	case "file_tree":
		return h.Graph.FilePaths(), nil
	case "stats":
		return h.Graph.Stats(), nil
	case "list_elements":
		return h.Graph.AllElements(), nil
	case "resolve_symbol":
		var p struct {
			Symbol string `json:"symbol"`
		}
		if err := unmarshalParams(req.Params, &p); err != nil {
			return nil, errs.NewRPCError(req.Method, err.Error())
		}
		return h.Graph.GlobalIndex.Exports(p.Symbol), nil
	case "resolve_module":
		var p struct {
			ModuleName string `json:"module_name"`
		}
		if err := unmarshalParams(req.Params, &p); err != nil {
			return nil, errs.NewRPCError(req.Method, err.Error())
		}
		file, ok := h.Graph.GlobalIndex.ModuleToFile(p.ModuleName)
		if !ok {
			return nil, nil
		}
		return file, nil
	default:
		return nil, errs.NewRPCError(req.Method, fmt.Sprintf("unknown method %q", req.Method))
	}
}

func unmarshalParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing params")
	}
	return json.Unmarshal(raw, v)
}

func withName[T any](req Request, fn func(string) T) (any, error) {
	var p struct {
		Name string `json:"name"`
	}
	if err := unmarshalParams(req.Params, &p); err != nil {
		return nil, errs.NewRPCError(req.Method, err.Error())
	}
	return fn(p.Name), nil
}

func withFile[T any](req Request, fn func(string) T) (any, error) {
	var p struct {
		File string `json:"file"`
	}
	if err := unmarshalParams(req.Params, &p); err != nil {
		return nil, errs.NewRPCError(req.Method, err.Error())
	}
	return fn(p.File), nil
}

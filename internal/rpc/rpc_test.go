package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/repo"
)

func startServer(t *testing.T, withIndex bool) (*Server, int) {
	t.Helper()
	r := repo.New()
	if withIndex {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc Run() {}\n"), 0o644))
		_, err := r.Build(context.Background(), dir)
		require.NoError(t, err)
	}

	s, err := New(r, nil)
	require.NoError(t, err)
	port, err := s.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })
	return s, port
}

func dial(t *testing.T, port int) (net.Conn, *bufio.Scanner) {
	t.Helper()
	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, bufio.NewScanner(conn)
}

func sendRequest(t *testing.T, conn net.Conn, scanner *bufio.Scanner, req Request) Response {
	t.Helper()
	line, err := json.Marshal(req)
	require.NoError(t, err)
	_, err = conn.Write(append(line, '\n'))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.True(t, scanner.Scan(), "expected a response line")

	var resp Response
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
	return resp
}

func TestServer_InvalidTokenDoesNotCloseConnection(t *testing.T) {
	_, port := startServer(t, true)
	conn, scanner := dial(t, port)

	resp := sendRequest(t, conn, scanner, Request{Token: "wrong", ID: "1", Method: "stats"})
	assert.NotEmpty(t, resp.Error)

	resp2 := sendRequest(t, conn, scanner, Request{Token: "wrong", ID: "2", Method: "stats"})
	assert.NotEmpty(t, resp2.Error)
}

func TestServer_MalformedRequestReturnsError(t *testing.T) {
	_, port := startServer(t, true)
	conn, scanner := dial(t, port)

	_, err := conn.Write([]byte("not json\n"))
	require.NoError(t, err)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.True(t, scanner.Scan())

	var resp Response
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestServer_UnknownMethodReturnsError(t *testing.T) {
	s, port := startServer(t, true)
	conn, scanner := dial(t, port)

	resp := sendRequest(t, conn, scanner, Request{Token: s.Token(), ID: "1", Method: "nope"})
	assert.Contains(t, resp.Error, "unknown method")
}

func TestServer_PreIndexQueryReturnsError(t *testing.T) {
	s, port := startServer(t, false)
	conn, scanner := dial(t, port)

	resp := sendRequest(t, conn, scanner, Request{Token: s.Token(), ID: "1", Method: "stats"})
	assert.Contains(t, resp.Error, "index not built")
}

func TestServer_StatsAndSearch(t *testing.T) {
	s, port := startServer(t, true)
	conn, scanner := dial(t, port)

	resp := sendRequest(t, conn, scanner, Request{Token: s.Token(), ID: "1", Method: "stats"})
	require.Empty(t, resp.Error)
	require.NotNil(t, resp.Result)

	params, err := json.Marshal(map[string]any{"query": "Run", "k": 5})
	require.NoError(t, err)
	resp2 := sendRequest(t, conn, scanner, Request{Token: s.Token(), ID: "2", Method: "search", Params: params})
	require.Empty(t, resp2.Error)
	results, ok := resp2.Result.([]any)
	require.True(t, ok)
	assert.NotEmpty(t, results)
}

func TestServer_FindCallersByName(t *testing.T) {
	s, port := startServer(t, true)
	conn, scanner := dial(t, port)

	params, err := json.Marshal(map[string]any{"name": "nonexistent"})
	require.NoError(t, err)
	resp := sendRequest(t, conn, scanner, Request{Token: s.Token(), ID: "1", Method: "find_callers", Params: params})
	require.Empty(t, resp.Error)
	assert.Nil(t, resp.Result)
}

func TestServer_GetSourceUnknownID(t *testing.T) {
	s, port := startServer(t, true)
	conn, scanner := dial(t, port)

	params, err := json.Marshal(map[string]any{"element_id": "does-not-exist"})
	require.NoError(t, err)
	resp := sendRequest(t, conn, scanner, Request{Token: s.Token(), ID: "1", Method: "get_source", Params: params})
	require.Empty(t, resp.Error)
	assert.Nil(t, resp.Result)
}

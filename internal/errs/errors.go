// Package errs is the typed error taxonomy: one struct per failure domain
// (parse, store, RPC, config), each carrying a Type and a Timestamp. All but
// RPCError wrap an Underlying error; StoreError alone has a fluent
// WithRecoverable builder.
package errs

import (
	"fmt"
	"time"
)

// ErrorType is a closed set of failure domains.
type ErrorType string

const (
	TypeParse    ErrorType = "parse"
	TypeResolve  ErrorType = "resolve"
	TypeStore    ErrorType = "store"
	TypeRPC      ErrorType = "rpc"
	TypeConfig   ErrorType = "config"
	TypeWatch    ErrorType = "watch"
	TypeInternal ErrorType = "internal"
)

// ParseErr reports a grammar/extraction failure for a single file. These
// never abort a build; they are collected and logged.
type ParseErr struct {
	Type       ErrorType
	FilePath   string
	Underlying error
	Timestamp  time.Time
}

func NewParseErr(path string, err error) *ParseErr {
	return &ParseErr{Type: TypeParse, FilePath: path, Underlying: err, Timestamp: time.Now()}
}

func (e *ParseErr) Error() string {
	return fmt.Sprintf("%s: parse failed for %s: %v", e.Type, e.FilePath, e.Underlying)
}
func (e *ParseErr) Unwrap() error { return e.Underlying }

// StoreError reports a persistence failure: I/O failure or a version
// mismatch on load, both of which a caller should treat as "fall back to a
// full reindex".
type StoreError struct {
	Type        ErrorType
	Path        string
	Operation   string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

func NewStoreError(op, path string, err error) *StoreError {
	return &StoreError{Type: TypeStore, Operation: op, Path: path, Underlying: err, Timestamp: time.Now()}
}

func (e *StoreError) WithRecoverable(r bool) *StoreError {
	e.Recoverable = r
	return e
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s failed for %s: %v", e.Type, e.Operation, e.Path, e.Underlying)
}
func (e *StoreError) Unwrap() error { return e.Underlying }

// RPCError reports a Snapshot RPC failure: auth mismatch, malformed
// request, unknown method, or a query issued before the index is built.
// The connection is never dropped for any of these.
type RPCError struct {
	Type      ErrorType
	Method    string
	Message   string
	Timestamp time.Time
}

func NewRPCError(method, message string) *RPCError {
	return &RPCError{Type: TypeRPC, Method: method, Message: message, Timestamp: time.Now()}
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Type, e.Method, e.Message)
}

// ConfigError reports a configuration load/validation failure.
type ConfigError struct {
	Type       ErrorType
	Path       string
	Underlying error
	Timestamp  time.Time
}

func NewConfigError(path string, err error) *ConfigError {
	return &ConfigError{Type: TypeConfig, Path: path, Underlying: err, Timestamp: time.Now()}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: invalid config %s: %v", e.Type, e.Path, e.Underlying)
}
func (e *ConfigError) Unwrap() error { return e.Underlying }

// MultiError aggregates per-file failures encountered during a walk/build
// without aborting it.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

func (m *MultiError) HasErrors() bool { return len(m.Errors) > 0 }

func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	return fmt.Sprintf("%d error(s), first: %v", len(m.Errors), m.Errors[0])
}

// Package docstore is a small hierarchical JSON document store modeled on the
// Firebase Realtime Database: nodes are addressed by slash separated paths,
// lists are appended with push keys, and a node can be updated atomically
// with a transaction.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned by Get when the node holds no value
	ErrNotFound = errors.New("docstore: node not found")
	// ErrInvalidPath rejects empty or malformed paths
	ErrInvalidPath = errors.New("docstore: invalid path")
)

const (
	BackendFirebase = "firebase"
	BackendMemory   = "memory"

	healthCheckPath = "health_check"
)

// TransactionNode exposes the current value of a node inside a transaction
type TransactionNode interface {
	Unmarshal(v interface{}) error
}

// UpdateFunc computes the new value of a node from its current value.
// Returning an error aborts the transaction and the error is returned to the
// caller unchanged. Returning nil deletes the node. The function may run more
// than once and must not have side effects.
type UpdateFunc func(node TransactionNode) (interface{}, error)

// Store is the document store used for flights and tickets
type Store interface {
	// Get decodes the node at path into v, or returns ErrNotFound
	Get(ctx context.Context, path string, v interface{}) error
	// Set replaces the node at path
	Set(ctx context.Context, path string, v interface{}) error
	// Update merges fields into the node at path. Keys may be nested paths.
	Update(ctx context.Context, path string, fields map[string]interface{}) error
	// Delete removes the node at path
	Delete(ctx context.Context, path string) error
	// Push stores v under a new chronologically ordered key and returns it
	Push(ctx context.Context, path string, v interface{}) (string, error)
	// QueryEqual decodes into v (a pointer to a map) the children of path
	// whose child field equals value
	QueryEqual(ctx context.Context, path, child string, value interface{}, v interface{}) error
	// Transaction atomically replaces the node at path with fn's result
	Transaction(ctx context.Context, path string, fn UpdateFunc) error
	// HealthCheck writes a probe node and reads it back
	HealthCheck(ctx context.Context) error
}

// Config selects and configures a backend
type Config struct {
	Backend         string
	DatabaseURL     string
	ProjectID       string
	CredentialsFile string
	CredentialsJSON string
}

// New opens the configured backend
func New(ctx context.Context, cfg *Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFirebase, "":
		return NewFirebase(ctx, cfg)
	default:
		return nil, fmt.Errorf("docstore: unknown backend %q", cfg.Backend)
	}
}

// Join builds a path from segments
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

func splitPath(path string) ([]string, error) {
	segs := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(segs) == 0 {
		return nil, ErrInvalidPath
	}
	for _, s := range segs {
		if strings.ContainsAny(s, ".$#[]") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return segs, nil
}

type healthProbe struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func probe(ctx context.Context, s Store) error {
	want := healthProbe{Status: "ok", Timestamp: time.Now().UTC().Format(time.RFC3339Nano)}
	if err := s.Set(ctx, healthCheckPath, want); err != nil {
		return fmt.Errorf("health probe write: %w", err)
	}
	var got healthProbe
	if err := s.Get(ctx, healthCheckPath, &got); err != nil {
		return fmt.Errorf("health probe read: %w", err)
	}
	if got != want {
		return errors.New("health probe read back a different value")
	}
	return nil
}

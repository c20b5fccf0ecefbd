package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cultivatehq/cultivate/backend/internal/config"
)

// Client defines the minimal contract required by the repositories to interact
// with the underlying graph database.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result is a simplified representation of a query response.
type Result struct {
	Records []Record
}

// Record groups key-value pairs returned from the graph engine.
type Record map[string]any

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// OptionsFromConfig maps the graph section of the service config.
func OptionsFromConfig(cfg config.GraphConfig) Options {
	return Options{
		URI:            cfg.URI,
		Database:       cfg.Database,
		Username:       cfg.Username,
		Password:       cfg.Password,
		MaxConnections: cfg.MaxConnections,
	}
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")

// String reads key as a string. Missing or non-string values yield "".
func (r Record) String(key string) string {
	return AsString(r[key])
}

// Int reads key as an int, accepting the int64 values the driver returns.
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

// BoolPtr reads a nullable boolean property.
func (r Record) BoolPtr(key string) *bool {
	if v, ok := r[key].(bool); ok {
		return &v
	}
	return nil
}

// TimePtr reads a temporal property stored either natively or as RFC 3339 text.
func (r Record) TimePtr(key string) *time.Time {
	switch v := r[key].(type) {
	case time.Time:
		return &v
	case string:
		if v == "" {
			return nil
		}
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return &parsed
		}
		if parsed, err := time.Parse(time.DateOnly, v); err == nil {
			return &parsed
		}
	}
	return nil
}

// Maps reads a list of map projections such as `[n IN nodes | {...}]`.
func (r Record) Maps(key string) []Record {
	raw, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// AsString converts a driver value to a string.
func AsString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

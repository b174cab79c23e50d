// Package graph mirrors pathway structure and progress into a Neo4j database.
package graph

import (
	"context"
	"errors"
)

// Client runs write statements against the graph. The mirror never reads back.
type Client interface {
	Write(ctx context.Context, cypher string, params map[string]any) error
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

type Options struct {
	URI      string
	Database string
	Username string
	Password string
}

var ErrMissingURI = errors.New("NEO4J_URI is required for the graph mirror")

package graph

import (
	"context"
	"maps"
	"sync"
)

// Statement is one write captured by MemoryClient.
type Statement struct {
	Cypher string
	Params map[string]any
}

// MemoryClient captures statements instead of talking to a database.
type MemoryClient struct {
	mu         sync.Mutex
	statements []Statement
	err        error
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// WithError makes every subsequent call fail with err.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
	return m
}

func (m *MemoryClient) Write(_ context.Context, cypher string, params map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.statements = append(m.statements, Statement{Cypher: cypher, Params: maps.Clone(params)})
	return nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *MemoryClient) Close(context.Context) error { return nil }

func (m *MemoryClient) Statements() []Statement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Statement(nil), m.statements...)
}

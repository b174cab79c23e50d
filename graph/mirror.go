package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/andrewpaige1/eduengage-api/logger"
	"github.com/andrewpaige1/eduengage-api/pathway"
)

const syncPathwayCypher = `
MERGE (pw:Pathway {id: $pathwayId})
SET pw.title = $title, pw.owner_id = $ownerId, pw.updated_at = $updatedAt, pw.synced_at = $syncedAt
WITH pw
UNWIND $nodes AS n
MERGE (pn:PathwayNode {pathway_id: $pathwayId, id: n.id})
SET pn += n
MERGE (pw)-[:CONTAINS]->(pn)
`

const syncEdgesCypher = `
UNWIND $edges AS e
MATCH (s:PathwayNode {pathway_id: $pathwayId, id: e.source})
MATCH (t:PathwayNode {pathway_id: $pathwayId, id: e.target})
MERGE (s)-[:UNLOCKS]->(t)
`

const deletePathwayCypher = `
MATCH (pw:Pathway {id: $pathwayId})
OPTIONAL MATCH (pn:PathwayNode {pathway_id: $pathwayId})
DETACH DELETE pw, pn
`

// Mirror projects pathways into the graph database. A nil *Mirror is a no-op.
type Mirror struct {
	client Client
	log    *logger.Logger
	now    func() time.Time
}

func NewMirror(client Client, baseLog *logger.Logger) *Mirror {
	if client == nil {
		return nil
	}
	return &Mirror{client: client, log: baseLog.With("component", "GraphMirror"), now: time.Now}
}

// SyncPathway upserts the pathway, its nodes with their current state, and UNLOCKS edges.
func (m *Mirror) SyncPathway(ctx context.Context, p pathway.Pathway) error {
	if m == nil {
		return nil
	}
	nodes := make([]map[string]any, 0, len(p.Nodes))
	for i, n := range p.Nodes {
		nodes = append(nodes, map[string]any{
			"id":        n.ID,
			"ordinal":   int64(i),
			"kind":      string(n.Kind),
			"title":     n.Title,
			"topic":     n.Topic,
			"completed": n.Completed,
			"unlocked":  n.Unlocked,
		})
	}
	params := map[string]any{
		"pathwayId": p.ID,
		"title":     p.Title,
		"ownerId":   p.OwnerID,
		"updatedAt": p.UpdatedAt.UTC().Format(time.RFC3339Nano),
		"syncedAt":  m.now().UTC().Format(time.RFC3339Nano),
		"nodes":     nodes,
	}
	if err := m.client.Write(ctx, syncPathwayCypher, params); err != nil {
		return fmt.Errorf("sync pathway %s: %w", p.ID, err)
	}

	if len(p.Edges) == 0 {
		return nil
	}
	edges := make([]map[string]any, 0, len(p.Edges))
	for _, e := range p.Edges {
		edges = append(edges, map[string]any{"source": e.Source, "target": e.Target})
	}
	if err := m.client.Write(ctx, syncEdgesCypher, map[string]any{
		"pathwayId": p.ID,
		"edges":     edges,
	}); err != nil {
		return fmt.Errorf("sync pathway edges %s: %w", p.ID, err)
	}
	return nil
}

func (m *Mirror) DeletePathway(ctx context.Context, pathwayID string) error {
	if m == nil {
		return nil
	}
	if err := m.client.Write(ctx, deletePathwayCypher, map[string]any{"pathwayId": pathwayID}); err != nil {
		return fmt.Errorf("delete pathway %s: %w", pathwayID, err)
	}
	return nil
}

// Ping reports whether the graph database is reachable.
func (m *Mirror) Ping(ctx context.Context) error {
	if m == nil {
		return nil
	}
	return m.client.VerifyConnectivity(ctx)
}

func (m *Mirror) Close(ctx context.Context) error {
	if m == nil {
		return nil
	}
	return m.client.Close(ctx)
}

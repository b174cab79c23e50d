// Package synthesis holds the read-only discussion mind map and its radial layout.
package synthesis

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// CentralID is the id of the node every other node hangs off.
const CentralID = "central"

var ErrMalformedGraph = errors.New("malformed synthesis graph")

type Node struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Summary  string `json:"summary"`
	Category string `json:"category"`
}

type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

type Synthesis struct {
	ID           string    `json:"id"`
	DiscussionID string    `json:"discussionId"`
	OwnerID      string    `json:"ownerId"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	Nodes        []Node    `json:"nodes"`
	Edges        []Edge    `json:"edges"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Validate requires exactly one central node, unique ids, known edge endpoints,
// and every node reachable from central.
func Validate(s Synthesis) error {
	ids := make(map[string]struct{}, len(s.Nodes))
	central := 0
	for i, n := range s.Nodes {
		if strings.TrimSpace(n.ID) == "" {
			return fmt.Errorf("%w: node %d has an empty id", ErrMalformedGraph, i)
		}
		if _, dup := ids[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %q", ErrMalformedGraph, n.ID)
		}
		ids[n.ID] = struct{}{}
		if n.ID == CentralID {
			central++
		}
	}
	if central == 0 {
		return fmt.Errorf("%w: missing %q node", ErrMalformedGraph, CentralID)
	}

	out := make(map[string][]string, len(s.Nodes))
	for i, e := range s.Edges {
		if _, ok := ids[e.Source]; !ok {
			return fmt.Errorf("%w: edge %d references unknown source %q", ErrMalformedGraph, i, e.Source)
		}
		if _, ok := ids[e.Target]; !ok {
			return fmt.Errorf("%w: edge %d references unknown target %q", ErrMalformedGraph, i, e.Target)
		}
		out[e.Source] = append(out[e.Source], e.Target)
	}

	reached := map[string]bool{CentralID: true}
	queue := []string{CentralID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range out[id] {
			if !reached[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}
	for _, n := range s.Nodes {
		if !reached[n.ID] {
			return fmt.Errorf("%w: node %q is not connected to %q", ErrMalformedGraph, n.ID, CentralID)
		}
	}
	return nil
}

type RadialConfig struct {
	CenterX float64
	CenterY float64
	Radius  float64
}

func DefaultRadialConfig() RadialConfig {
	return RadialConfig{CenterX: 400, CenterY: 300, Radius: 250}
}

type Position struct {
	NodeID string  `json:"nodeId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	// Angle in radians; zero for the central node.
	Angle float64 `json:"angle"`
}

type Layout struct {
	Positions []Position `json:"positions"`
}

func (l Layout) Position(id string) (Position, bool) {
	for _, p := range l.Positions {
		if p.NodeID == id {
			return p, true
		}
	}
	return Position{}, false
}

// ComputeLayout puts central at the anchor and spreads the other nodes evenly on
// a circle in input order. Nodes crowd as the count grows; nothing avoids overlap.
func ComputeLayout(s Synthesis, cfg RadialConfig) (Layout, error) {
	rest := make([]Node, 0, len(s.Nodes))
	found := false
	for _, n := range s.Nodes {
		if n.ID == CentralID && !found {
			found = true
			continue
		}
		rest = append(rest, n)
	}
	if !found {
		return Layout{}, fmt.Errorf("%w: missing %q node", ErrMalformedGraph, CentralID)
	}

	out := Layout{Positions: make([]Position, 0, len(s.Nodes))}
	out.Positions = append(out.Positions, Position{NodeID: CentralID, X: cfg.CenterX, Y: cfg.CenterY})

	total := len(s.Nodes)
	for i, n := range rest {
		angle := 2 * math.Pi * float64(i) / float64(total-1)
		out.Positions = append(out.Positions, Position{
			NodeID: n.ID,
			X:      cfg.CenterX + cfg.Radius*math.Cos(angle),
			Y:      cfg.CenterY + cfg.Radius*math.Sin(angle),
			Angle:  angle,
		})
	}
	return out, nil
}

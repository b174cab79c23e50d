package pathway

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validate checks the structure of p: known kinds, unique ids, edges that point at
// existing nodes, no cycles, and text that fits the storage limits. Every failure
// wraps ErrMalformedGraph.
func Validate(p Pathway) error {
	if len(p.Nodes) == 0 {
		return fmt.Errorf("%w: pathway has no nodes", ErrMalformedGraph)
	}
	if err := checkLen("pathway title", p.Title, MaxTitleLen); err != nil {
		return err
	}
	if err := checkLen("pathway description", p.Description, MaxDescriptionLen); err != nil {
		return err
	}

	ids := make(map[string]struct{}, len(p.Nodes))
	for i, n := range p.Nodes {
		if strings.TrimSpace(n.ID) == "" {
			return fmt.Errorf("%w: node %d has an empty id", ErrMalformedGraph, i)
		}
		if _, dup := ids[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %q", ErrMalformedGraph, n.ID)
		}
		if !n.Kind.Valid() {
			return fmt.Errorf("%w: node %q has unknown type %q", ErrMalformedGraph, n.ID, n.Kind)
		}
		ids[n.ID] = struct{}{}
		fields := []struct {
			name  string
			value string
			max   int
		}{
			{"id", n.ID, MaxIDLen},
			{"title", n.Title, MaxTitleLen},
			{"topic", n.Topic, MaxTopicLen},
			{"description", n.Description, MaxDescriptionLen},
			{"motivation text", n.MotivationText, MaxMotivationLen},
		}
		for _, f := range fields {
			if err := checkLen(fmt.Sprintf("node %q %s", n.ID, f.name), f.value, f.max); err != nil {
				return err
			}
		}
	}

	seen := make(map[Edge]struct{}, len(p.Edges))
	for i, e := range p.Edges {
		if _, ok := ids[e.Source]; !ok {
			return fmt.Errorf("%w: edge %d references unknown source %q", ErrMalformedGraph, i, e.Source)
		}
		if _, ok := ids[e.Target]; !ok {
			return fmt.Errorf("%w: edge %d references unknown target %q", ErrMalformedGraph, i, e.Target)
		}
		if e.Source == e.Target {
			return fmt.Errorf("%w: edge %d is a self-loop on %q", ErrMalformedGraph, i, e.Source)
		}
		if _, dup := seen[e]; dup {
			return fmt.Errorf("%w: duplicate edge %q -> %q", ErrMalformedGraph, e.Source, e.Target)
		}
		seen[e] = struct{}{}
	}

	if cyc := cycleMembers(p); len(cyc) > 0 {
		return fmt.Errorf("%w: cycle through %s", ErrMalformedGraph, strings.Join(cyc, ", "))
	}
	return nil
}

// ValidateFresh is Validate plus the invariants of a newly generated pathway:
// nothing completed, at least one unlocked root, and every non-root locked.
func ValidateFresh(p Pathway) error {
	if err := Validate(p); err != nil {
		return err
	}

	roots := make(map[string]struct{})
	unlockedRoot := false
	for _, r := range Roots(p) {
		roots[r.ID] = struct{}{}
		if r.Unlocked {
			unlockedRoot = true
		}
	}
	if !unlockedRoot {
		return fmt.Errorf("%w: no root node is unlocked", ErrMalformedGraph)
	}
	for _, n := range p.Nodes {
		if n.Completed {
			return fmt.Errorf("%w: node %q is already completed", ErrMalformedGraph, n.ID)
		}
		if _, isRoot := roots[n.ID]; !isRoot && n.Unlocked {
			return fmt.Errorf("%w: non-root node %q starts unlocked", ErrMalformedGraph, n.ID)
		}
	}
	return nil
}

func checkLen(what, value string, limit int) error {
	if n := utf8.RuneCountInString(value); n > limit {
		return fmt.Errorf("%w: %s is %d characters, limit %d", ErrMalformedGraph, what, n, limit)
	}
	return nil
}

// cycleMembers runs Kahn's algorithm and returns the ids left with unresolved
// in-degree, in node order. Empty means acyclic.
func cycleMembers(p Pathway) []string {
	indeg := make(map[string]int, len(p.Nodes))
	for _, n := range p.Nodes {
		indeg[n.ID] = 0
	}
	for _, e := range p.Edges {
		indeg[e.Target]++
	}

	queue := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		if indeg[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range p.Edges {
			if e.Source != id {
				continue
			}
			indeg[e.Target]--
			if indeg[e.Target] == 0 {
				queue = append(queue, e.Target)
			}
		}
	}

	var stuck []string
	for _, n := range p.Nodes {
		if indeg[n.ID] > 0 {
			stuck = append(stuck, n.ID)
		}
	}
	return stuck
}

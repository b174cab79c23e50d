package pathway

// Ranking selects how nodes are assigned to levels.
type Ranking int

const (
	// RankAfterParents places a node one level below the deepest of its parents.
	// On trees it matches RankFirstReach; on DAGs it keeps every edge pointing down.
	RankAfterParents Ranking = iota
	// RankFirstReach places a node on the level after the first level that reaches it.
	RankFirstReach
)

func (r Ranking) String() string {
	if r == RankFirstReach {
		return "first-reach"
	}
	return "after-parents"
}

// ParseRanking accepts "first-reach" and "after-parents"; anything else yields the default.
func ParseRanking(s string) Ranking {
	if s == "first-reach" {
		return RankFirstReach
	}
	return RankAfterParents
}

type LayoutConfig struct {
	NodeWidth     float64
	NodeHeight    float64
	HorizontalGap float64
	VerticalGap   float64
	Ranking       Ranking
}

func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		NodeWidth:     180,
		NodeHeight:    100,
		HorizontalGap: 100,
		VerticalGap:   150,
		Ranking:       RankAfterParents,
	}
}

type Position struct {
	NodeID string  `json:"nodeId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Level  int     `json:"level"`
}

type Layout struct {
	Positions []Position `json:"positions"`
	// Omitted holds nodes that no level reached (cycles not hanging off a root).
	Omitted []string `json:"omitted,omitempty"`
}

func (l Layout) Position(id string) (Position, bool) {
	for _, p := range l.Positions {
		if p.NodeID == id {
			return p, true
		}
	}
	return Position{}, false
}

// Levels is the number of distinct levels used.
func (l Layout) Levels() int {
	max := -1
	for _, p := range l.Positions {
		if p.Level > max {
			max = p.Level
		}
	}
	return max + 1
}

// ComputeLayout assigns coordinates level by level starting from the roots.
// Within a level nodes keep their order in p.Nodes. The result depends only on
// the input order, and the loop always terminates: a node is positioned at most once.
func ComputeLayout(p Pathway, cfg LayoutConfig) Layout {
	order := make(map[string]int, len(p.Nodes))
	for i, n := range p.Nodes {
		order[n.ID] = i
	}
	parents := make(map[string][]string, len(p.Nodes))
	for _, e := range p.Edges {
		if _, ok := order[e.Source]; !ok {
			continue
		}
		if _, ok := order[e.Target]; !ok {
			continue
		}
		parents[e.Target] = append(parents[e.Target], e.Source)
	}

	positioned := make(map[string]bool, len(p.Nodes))
	var current []string
	for _, r := range Roots(p) {
		current = append(current, r.ID)
	}

	out := Layout{Positions: make([]Position, 0, len(p.Nodes))}
	stepX := cfg.NodeWidth + cfg.HorizontalGap
	stepY := cfg.NodeHeight + cfg.VerticalGap

	for level := 0; len(current) > 0; level++ {
		inCurrent := make(map[string]bool, len(current))
		for i, id := range current {
			out.Positions = append(out.Positions, Position{
				NodeID: id,
				X:      float64(i) * stepX,
				Y:      float64(level) * stepY,
				Level:  level,
			})
			positioned[id] = true
			inCurrent[id] = true
		}

		var next []string
		for _, n := range p.Nodes {
			if positioned[n.ID] {
				continue
			}
			if !reachedFrom(parents[n.ID], inCurrent) {
				continue
			}
			if cfg.Ranking == RankAfterParents && !allPositioned(parents[n.ID], positioned) {
				continue
			}
			next = append(next, n.ID)
		}
		current = next
	}

	for _, n := range p.Nodes {
		if !positioned[n.ID] {
			out.Omitted = append(out.Omitted, n.ID)
		}
	}
	return out
}

func reachedFrom(parents []string, level map[string]bool) bool {
	for _, id := range parents {
		if level[id] {
			return true
		}
	}
	return false
}

func allPositioned(parents []string, positioned map[string]bool) bool {
	for _, id := range parents {
		if !positioned[id] {
			return false
		}
	}
	return true
}

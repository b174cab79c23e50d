package pathway

import (
	"reflect"
	"testing"
)

func TestComputeLayoutChain(t *testing.T) {
	cfg := DefaultLayoutConfig()
	l := ComputeLayout(chain(), cfg)

	step := cfg.NodeHeight + cfg.VerticalGap
	for i, id := range []string{"A", "B", "C"} {
		pos, ok := l.Position(id)
		if !ok {
			t.Fatalf("%s not positioned", id)
		}
		if pos.Level != i {
			t.Fatalf("%s level=%d want %d", id, pos.Level, i)
		}
		if pos.X != 0 {
			t.Fatalf("%s x=%v want 0", id, pos.X)
		}
		if pos.Y != float64(i)*step {
			t.Fatalf("%s y=%v want %v", id, pos.Y, float64(i)*step)
		}
	}
	if l.Levels() != 3 || len(l.Omitted) != 0 {
		t.Fatalf("levels=%d omitted=%v", l.Levels(), l.Omitted)
	}
}

func TestComputeLayoutSiblingsSpreadHorizontally(t *testing.T) {
	p := Pathway{
		Nodes: []Node{{ID: "r"}, {ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []Edge{{Source: "r", Target: "a"}, {Source: "r", Target: "b"}, {Source: "r", Target: "c"}},
	}
	cfg := DefaultLayoutConfig()
	l := ComputeLayout(p, cfg)
	for i, id := range []string{"a", "b", "c"} {
		pos, _ := l.Position(id)
		if want := float64(i) * (cfg.NodeWidth + cfg.HorizontalGap); pos.X != want {
			t.Fatalf("%s x=%v want %v", id, pos.X, want)
		}
		if pos.Level != 1 {
			t.Fatalf("%s level=%d want 1", id, pos.Level)
		}
	}
}

func shortcut() Pathway {
	// r -> a -> b plus a shortcut r -> b.
	return Pathway{
		Nodes: []Node{{ID: "r"}, {ID: "a"}, {ID: "b"}},
		Edges: []Edge{{Source: "r", Target: "a"}, {Source: "a", Target: "b"}, {Source: "r", Target: "b"}},
	}
}

func TestComputeLayoutRankings(t *testing.T) {
	tests := []struct {
		ranking Ranking
		want    map[string]int
	}{
		{RankAfterParents, map[string]int{"r": 0, "a": 1, "b": 2}},
		{RankFirstReach, map[string]int{"r": 0, "a": 1, "b": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.ranking.String(), func(t *testing.T) {
			cfg := DefaultLayoutConfig()
			cfg.Ranking = tt.ranking
			l := ComputeLayout(shortcut(), cfg)
			got := map[string]int{}
			for _, p := range l.Positions {
				got[p.NodeID] = p.Level
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("levels=%v want %v", got, tt.want)
			}
		})
	}
}

func TestComputeLayoutLevelMonotonic(t *testing.T) {
	p := Pathway{
		Nodes: []Node{{ID: "r1"}, {ID: "r2"}, {ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}},
		Edges: []Edge{
			{Source: "r1", Target: "a"},
			{Source: "a", Target: "b"},
			{Source: "b", Target: "d"},
			{Source: "r2", Target: "c"},
			{Source: "c", Target: "d"},
			{Source: "r1", Target: "d"},
		},
	}
	l := ComputeLayout(p, DefaultLayoutConfig())
	for _, e := range p.Edges {
		src, _ := l.Position(e.Source)
		dst, _ := l.Position(e.Target)
		if dst.Level <= src.Level {
			t.Fatalf("edge %s->%s: level %d <= %d", e.Source, e.Target, dst.Level, src.Level)
		}
	}
}

func TestComputeLayoutDeterministic(t *testing.T) {
	p := shortcut()
	first := ComputeLayout(p, DefaultLayoutConfig())
	for i := 0; i < 10; i++ {
		if got := ComputeLayout(p, DefaultLayoutConfig()); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestComputeLayoutOmitsUnreachableCycle(t *testing.T) {
	p := Pathway{
		Nodes: []Node{{ID: "r"}, {ID: "x"}, {ID: "y"}},
		Edges: []Edge{{Source: "x", Target: "y"}, {Source: "y", Target: "x"}},
	}
	for _, ranking := range []Ranking{RankAfterParents, RankFirstReach} {
		cfg := DefaultLayoutConfig()
		cfg.Ranking = ranking
		l := ComputeLayout(p, cfg)
		if len(l.Positions) != 1 || l.Positions[0].NodeID != "r" {
			t.Fatalf("%s: positions=%+v", ranking, l.Positions)
		}
		if !reflect.DeepEqual(l.Omitted, []string{"x", "y"}) {
			t.Fatalf("%s: omitted=%v", ranking, l.Omitted)
		}
	}
}

func TestComputeLayoutCycleReachableFromRootTerminates(t *testing.T) {
	p := Pathway{
		Nodes: []Node{{ID: "r"}, {ID: "x"}, {ID: "y"}},
		Edges: []Edge{{Source: "r", Target: "x"}, {Source: "x", Target: "y"}, {Source: "y", Target: "x"}},
	}
	cfg := DefaultLayoutConfig()
	cfg.Ranking = RankFirstReach
	l := ComputeLayout(p, cfg)
	if len(l.Positions) != 3 {
		t.Fatalf("positions=%+v", l.Positions)
	}
}

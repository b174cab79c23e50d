package synthesis

import (
	"errors"
	"math"
	"testing"
)

func fiveNode() Synthesis {
	return Synthesis{
		ID:    "s1",
		Title: "Climate debate",
		Nodes: []Node{
			{ID: CentralID, Label: "Climate"},
			{ID: "n1", Label: "Policy"},
			{ID: "n2", Label: "Science"},
			{ID: "n3", Label: "Economy"},
			{ID: "n4", Label: "Ethics"},
		},
		Edges: []Edge{
			{Source: CentralID, Target: "n1"},
			{Source: CentralID, Target: "n2"},
			{Source: CentralID, Target: "n3"},
			{Source: "n3", Target: "n4"},
		},
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputeLayoutFiveNodes(t *testing.T) {
	cfg := DefaultRadialConfig()
	l, err := ComputeLayout(fiveNode(), cfg)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	c, ok := l.Position(CentralID)
	if !ok || c.X != cfg.CenterX || c.Y != cfg.CenterY {
		t.Fatalf("central=%+v", c)
	}
	want := []struct{ dx, dy float64 }{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	for i, id := range []string{"n1", "n2", "n3", "n4"} {
		p, ok := l.Position(id)
		if !ok {
			t.Fatalf("%s missing", id)
		}
		if !near(p.Angle, float64(i)*math.Pi/2) {
			t.Fatalf("%s angle=%v want %v", id, p.Angle, float64(i)*math.Pi/2)
		}
		if !near(p.X, cfg.CenterX+cfg.Radius*want[i].dx) || !near(p.Y, cfg.CenterY+cfg.Radius*want[i].dy) {
			t.Fatalf("%s at (%v,%v)", id, p.X, p.Y)
		}
	}
}

func TestComputeLayoutCentralOnly(t *testing.T) {
	l, err := ComputeLayout(Synthesis{Nodes: []Node{{ID: CentralID}}}, DefaultRadialConfig())
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if len(l.Positions) != 1 {
		t.Fatalf("positions=%+v", l.Positions)
	}
}

func TestComputeLayoutMissingCentral(t *testing.T) {
	_, err := ComputeLayout(Synthesis{Nodes: []Node{{ID: "a"}}}, DefaultRadialConfig())
	if !errors.Is(err, ErrMalformedGraph) {
		t.Fatalf("err=%v want ErrMalformedGraph", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Synthesis)
		wantErr bool
	}{
		{"valid", func(*Synthesis) {}, false},
		{"no central", func(s *Synthesis) { s.Nodes[0].ID = "hub"; s.Edges = nil }, true},
		{"duplicate id", func(s *Synthesis) { s.Nodes[4].ID = "n1" }, true},
		{"dangling edge", func(s *Synthesis) { s.Edges = append(s.Edges, Edge{Source: "n1", Target: "zz"}) }, true},
		{"disconnected", func(s *Synthesis) { s.Edges = s.Edges[:3] }, true},
		{"inward edge only", func(s *Synthesis) { s.Edges[3] = Edge{Source: "n4", Target: "n3"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fiveNode()
			tt.mutate(&s)
			err := Validate(s)
			if tt.wantErr != (err != nil) {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMalformedGraph) {
				t.Fatalf("err=%v not ErrMalformedGraph", err)
			}
		})
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/andrewpaige1/eduengage-api/events"
	"github.com/andrewpaige1/eduengage-api/generator"
	"github.com/andrewpaige1/eduengage-api/graph"
	"github.com/andrewpaige1/eduengage-api/pathway"
	"github.com/andrewpaige1/eduengage-api/store"
	"github.com/andrewpaige1/eduengage-api/synthesis"
	"github.com/andrewpaige1/eduengage-api/testutil"
)

const owner = "auth0|owner"

type fixture struct {
	svc      *PathwayService
	store    *store.Store
	recorder *events.Recorder
	graph    *graph.MemoryClient
}

func newFixture(t *testing.T, opts ...pathway.Option) fixture {
	t.Helper()
	log := testutil.Logger(t)
	st := store.New(testutil.DB(t), log)
	if _, err := st.EnsureUser(context.Background(), owner, "owner"); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if _, err := st.EnsureUser(context.Background(), "auth0|other", "other"); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	rec := &events.Recorder{}
	mem := graph.NewMemoryClient()
	opts = append([]pathway.Option{pathway.WithSparkChance(0)}, opts...)
	svc := NewPathwayService(st, pathway.NewEngine(opts...), generator.NewCurriculumGenerator(),
		pathway.DefaultLayoutConfig(), rec, graph.NewMirror(mem, log), log)
	return fixture{svc: svc, store: st, recorder: rec, graph: mem}
}

// fan is a root with n children.
func fan(n int) pathway.Pathway {
	p := pathway.Pathway{
		Title: "Fan",
		Nodes: []pathway.Node{{ID: "root", Kind: pathway.KindVideo, Unlocked: true}},
	}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("c%d", i)
		p.Nodes = append(p.Nodes, pathway.Node{ID: id, Kind: pathway.KindQuiz, Topic: id})
		p.Edges = append(p.Edges, pathway.Edge{Source: "root", Target: id})
	}
	return p
}

func TestIngestAssignsIdentity(t *testing.T) {
	f := newFixture(t)
	in := fan(2)
	in.ID = "client-chosen"
	v, err := f.svc.Ingest(context.Background(), owner, in)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(v.Pathway.ID) != pathway.PublicIDLength || v.Pathway.ID == "client-chosen" {
		t.Fatalf("id=%q", v.Pathway.ID)
	}
	if v.Pathway.OwnerID != owner || v.Pathway.CreatedAt.IsZero() {
		t.Fatalf("pathway=%+v", v.Pathway)
	}
	if len(v.Layout.Positions) != 3 || v.Progress.Total != 3 || v.Progress.Unlocked != 1 {
		t.Fatalf("layout=%+v progress=%+v", v.Layout, v.Progress)
	}
	if len(f.graph.Statements()) == 0 {
		t.Fatalf("pathway not mirrored")
	}
	if in.ID != "client-chosen" {
		t.Fatalf("input mutated")
	}
}

func TestIngestRejectsMalformed(t *testing.T) {
	f := newFixture(t)
	p := fan(1)
	p.Edges = append(p.Edges, pathway.Edge{Source: "c0", Target: "root"})
	if _, err := f.svc.Ingest(context.Background(), owner, p); !errors.Is(err, pathway.ErrMalformedGraph) {
		t.Fatalf("err=%v want ErrMalformedGraph", err)
	}
}

func TestGenerate(t *testing.T) {
	f := newFixture(t)
	v, err := f.svc.Generate(context.Background(), owner, generator.Request{
		StudentID:  "spoofed",
		Weaknesses: []string{"fractions"},
		Interests:  []string{"astronomy"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if v.Pathway.OwnerID != owner || len(v.Pathway.ID) != pathway.PublicIDLength {
		t.Fatalf("owner=%q id=%q", v.Pathway.OwnerID, v.Pathway.ID)
	}
	got, err := f.svc.Get(context.Background(), owner, v.Pathway.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Pathway.Nodes) != len(v.Pathway.Nodes) {
		t.Fatalf("stored %d nodes, generated %d", len(got.Pathway.Nodes), len(v.Pathway.Nodes))
	}

	if _, err := f.svc.Generate(context.Background(), owner, generator.Request{}); !errors.Is(err, generator.ErrEmptyProfile) {
		t.Fatalf("empty profile err=%v", err)
	}
}

func TestCompletePublishesAndPersists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.svc.Ingest(ctx, owner, fan(2))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	id := v.Pathway.ID

	c, err := f.svc.Complete(ctx, owner, id, "root")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !c.FirstTime || len(c.Unlocked) != 2 {
		t.Fatalf("completion=%+v", c)
	}
	got, err := f.store.GetPathway(ctx, id)
	if err != nil {
		t.Fatalf("GetPathway: %v", err)
	}
	if p := got.Progress(); p.Completed != 1 || p.Unlocked != 3 {
		t.Fatalf("stored progress=%+v", p)
	}

	evs := f.recorder.Events()
	if len(evs) != 1 || evs[0].Type != events.TypePathwayUpdated || evs[0].PathwayID != id {
		t.Fatalf("events=%+v", evs)
	}
}

func TestCompleteErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.svc.Ingest(ctx, owner, fan(1))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	id := v.Pathway.ID

	tests := []struct {
		name   string
		owner  string
		id     string
		nodeID string
		want   error
	}{
		{"locked", owner, id, "c0", pathway.ErrGateClosed},
		{"unknown node", owner, id, "ghost", pathway.ErrNodeNotFound},
		{"unknown pathway", owner, "nope", "root", store.ErrNotFound},
		{"not owner", "auth0|other", id, "root", ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Complete(ctx, tt.owner, tt.id, tt.nodeID); !errors.Is(err, tt.want) {
				t.Fatalf("err=%v want %v", err, tt.want)
			}
		})
	}
	if n := len(f.recorder.Events()); n != 0 {
		t.Fatalf("failed completions published %d events", n)
	}
}

func TestCompleteSparkEvent(t *testing.T) {
	f := newFixture(t, pathway.WithSparkChance(1), pathway.WithRandom(func() float64 { return 0 }))
	ctx := context.Background()
	v, err := f.svc.Ingest(ctx, owner, fan(1))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	c, err := f.svc.Complete(ctx, owner, v.Pathway.ID, "root")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if c.Spark == nil {
		t.Fatalf("expected spark")
	}
	evs := f.recorder.Events()
	if len(evs) != 2 || evs[1].Type != events.TypeCuriositySpark {
		t.Fatalf("events=%+v", evs)
	}

	// Revisits never spark.
	if _, err := f.svc.Complete(ctx, owner, v.Pathway.ID, "root"); err != nil {
		t.Fatalf("revisit: %v", err)
	}
	if n := len(f.recorder.Events()); n != 3 {
		t.Fatalf("events after revisit=%d want 3", n)
	}
}

func TestCompleteSurvivesNotifierAndMirrorFailure(t *testing.T) {
	f := newFixture(t)
	f.recorder.Err = errors.New("redis down")
	f.graph.WithError(errors.New("bolt down"))
	ctx := context.Background()

	// Ingest also tolerates the mirror being down.
	v, err := f.svc.Ingest(ctx, owner, fan(1))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if _, err := f.svc.Complete(ctx, owner, v.Pathway.ID, "root"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
}

func TestConcurrentCompletionsKeepEveryUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const n = 8
	v, err := f.svc.Ingest(ctx, owner, fan(n))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	id := v.Pathway.ID
	if _, err := f.svc.Complete(ctx, owner, id, "root"); err != nil {
		t.Fatalf("Complete root: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(node string) {
			defer wg.Done()
			if _, err := f.svc.Complete(ctx, owner, id, node); err != nil {
				errs <- err
			}
		}(fmt.Sprintf("c%d", i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Complete: %v", err)
	}

	got, err := f.store.GetPathway(ctx, id)
	if err != nil {
		t.Fatalf("GetPathway: %v", err)
	}
	if p := got.Progress(); p.Completed != n+1 {
		t.Fatalf("completed=%d want %d", p.Completed, n+1)
	}
	if size := f.svc.locks.size(); size != 0 {
		t.Fatalf("lock table holds %d entries", size)
	}
}

func TestLayoutRanking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// a -> b -> c and a -> c: first-reach puts c on level 1, after-parents on level 2.
	p := pathway.Pathway{
		Nodes: []pathway.Node{
			{ID: "a", Kind: pathway.KindVideo, Unlocked: true},
			{ID: "b", Kind: pathway.KindQuiz},
			{ID: "c", Kind: pathway.KindReading},
		},
		Edges: []pathway.Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "c"}, {Source: "a", Target: "c"}},
	}
	v, err := f.svc.Ingest(ctx, owner, p)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	for ranking, want := range map[string]int{"": 2, "first-reach": 1, "after-parents": 2} {
		l, err := f.svc.Layout(ctx, owner, v.Pathway.ID, ranking)
		if err != nil {
			t.Fatalf("Layout(%q): %v", ranking, err)
		}
		pos, ok := l.Position("c")
		if !ok || pos.Level != want {
			t.Fatalf("ranking %q: c=%+v want level %d", ranking, pos, want)
		}
	}
}

func TestListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.svc.Ingest(ctx, owner, fan(1))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	list, err := f.svc.List(ctx, owner)
	if err != nil || len(list) != 1 || list[0].Progress.Total != 2 {
		t.Fatalf("List=%+v err=%v", list, err)
	}

	if err := f.svc.Delete(ctx, "auth0|other", v.Pathway.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign delete err=%v", err)
	}
	if err := f.svc.Delete(ctx, owner, v.Pathway.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, owner, v.Pathway.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("after delete err=%v", err)
	}
}

func TestSynthesisService(t *testing.T) {
	log := testutil.Logger(t)
	st := store.New(testutil.DB(t), log)
	ctx := context.Background()
	if _, err := st.EnsureUser(ctx, owner, "owner"); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	svc := NewSynthesisService(st, synthesis.DefaultRadialConfig(), log)
	fixed := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	in := synthesis.Synthesis{
		DiscussionID: "d1",
		Title:        "Energy",
		Nodes: []synthesis.Node{
			{ID: synthesis.CentralID, Label: "Energy"},
			{ID: "solar", Label: "Solar"},
			{ID: "wind", Label: "Wind"},
		},
		Edges: []synthesis.Edge{
			{Source: synthesis.CentralID, Target: "solar"},
			{Source: synthesis.CentralID, Target: "wind"},
		},
	}
	v, err := svc.Create(ctx, owner, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !v.Synthesis.CreatedAt.Equal(fixed) || len(v.Layout.Positions) != 3 || len(v.Synthesis.ID) != pathway.PublicIDLength {
		t.Fatalf("view=%+v", v)
	}
	got, err := svc.Get(ctx, owner, v.Synthesis.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c, ok := got.Layout.Position(synthesis.CentralID); !ok || c.X != 400 || c.Y != 300 {
		t.Fatalf("central=%+v", c)
	}
	if _, err := svc.Get(ctx, "auth0|other", v.Synthesis.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign get err=%v", err)
	}

	bad := in
	bad.Nodes = bad.Nodes[1:]
	if _, err := svc.Create(ctx, owner, bad); !errors.Is(err, synthesis.ErrMalformedGraph) {
		t.Fatalf("missing central err=%v", err)
	}
	list, err := svc.List(ctx, owner)
	if err != nil || len(list) != 1 {
		t.Fatalf("List len=%d err=%v", len(list), err)
	}
}

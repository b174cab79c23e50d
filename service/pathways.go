// Package service wires the pathway engine to storage, events and the graph mirror.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/andrewpaige1/eduengage-api/events"
	"github.com/andrewpaige1/eduengage-api/generator"
	"github.com/andrewpaige1/eduengage-api/graph"
	"github.com/andrewpaige1/eduengage-api/logger"
	"github.com/andrewpaige1/eduengage-api/pathway"
)

var ErrForbidden = errors.New("not the owner of this resource")

type PathwayStore interface {
	CreatePathway(ctx context.Context, p pathway.Pathway) error
	GetPathway(ctx context.Context, id string) (pathway.Pathway, error)
	ListPathways(ctx context.Context, ownerID string) ([]pathway.Pathway, error)
	SaveProgress(ctx context.Context, p pathway.Pathway) error
	DeletePathway(ctx context.Context, id string) error
}

type PathwayView struct {
	Pathway  pathway.Pathway  `json:"pathway"`
	Layout   pathway.Layout   `json:"layout"`
	Progress pathway.Progress `json:"progress"`
}

type PathwaySummary struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Progress    pathway.Progress `json:"progress"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type PathwayService struct {
	store    PathwayStore
	engine   *pathway.Engine
	gen      generator.Generator
	layout   pathway.LayoutConfig
	notifier events.Notifier
	mirror   *graph.Mirror
	log      *logger.Logger
	locks    *keyedMutex

	now   func() time.Time
	newID func() (string, error)
}

// NewPathwayService builds the service. notifier and mirror may be nil.
func NewPathwayService(
	st PathwayStore,
	engine *pathway.Engine,
	gen generator.Generator,
	layout pathway.LayoutConfig,
	notifier events.Notifier,
	mirror *graph.Mirror,
	baseLog *logger.Logger,
) *PathwayService {
	if notifier == nil {
		notifier = events.Multi{}
	}
	return &PathwayService{
		store:    st,
		engine:   engine,
		gen:      gen,
		layout:   layout,
		notifier: notifier,
		mirror:   mirror,
		log:      baseLog.With("service", "PathwayService"),
		locks:    newKeyedMutex(),
		now:      time.Now,
		newID:    func() (string, error) { return gonanoid.New(pathway.PublicIDLength) },
	}
}

// Ingest stores a client-built pathway for ownerID. It must be in its initial state.
// Any client-supplied id or timestamps are replaced.
func (s *PathwayService) Ingest(ctx context.Context, ownerID string, p pathway.Pathway) (PathwayView, error) {
	if err := pathway.ValidateFresh(p); err != nil {
		return PathwayView{}, err
	}
	id, err := s.newID()
	if err != nil {
		return PathwayView{}, fmt.Errorf("generate pathway id: %w", err)
	}
	now := s.now().UTC()
	p = p.Clone()
	p.ID = id
	p.OwnerID = ownerID
	p.CreatedAt = now
	p.UpdatedAt = now
	return s.create(ctx, p)
}

// Generate builds a pathway from the student's profile and stores it.
func (s *PathwayService) Generate(ctx context.Context, ownerID string, req generator.Request) (PathwayView, error) {
	req.StudentID = ownerID
	p, err := s.gen.Generate(ctx, req)
	if err != nil {
		return PathwayView{}, err
	}
	p.OwnerID = ownerID
	return s.create(ctx, p)
}

func (s *PathwayService) create(ctx context.Context, p pathway.Pathway) (PathwayView, error) {
	if err := s.store.CreatePathway(ctx, p); err != nil {
		return PathwayView{}, err
	}
	s.log.Info("pathway created", "pathway_id", p.ID, "owner_id", p.OwnerID, "nodes", len(p.Nodes))
	s.syncMirror(ctx, p)
	return s.view(p, s.layout), nil
}

func (s *PathwayService) Get(ctx context.Context, ownerID, id string) (PathwayView, error) {
	p, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return PathwayView{}, err
	}
	return s.view(p, s.layout), nil
}

// Layout positions the pathway. An empty ranking keeps the configured one.
func (s *PathwayService) Layout(ctx context.Context, ownerID, id, ranking string) (pathway.Layout, error) {
	p, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return pathway.Layout{}, err
	}
	cfg := s.layout
	if ranking != "" {
		cfg.Ranking = pathway.ParseRanking(ranking)
	}
	return pathway.ComputeLayout(p, cfg), nil
}

func (s *PathwayService) List(ctx context.Context, ownerID string) ([]PathwaySummary, error) {
	ps, err := s.store.ListPathways(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]PathwaySummary, 0, len(ps))
	for _, p := range ps {
		out = append(out, PathwaySummary{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Progress:    p.Progress(),
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		})
	}
	return out, nil
}

// Complete marks nodeID complete and unlocks its successors. Completions on the
// same pathway run one at a time so none overwrites another's progress.
func (s *PathwayService) Complete(ctx context.Context, ownerID, id, nodeID string) (pathway.Completion, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	p, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return pathway.Completion{}, err
	}
	c, err := s.engine.CompleteNode(p, nodeID)
	if err != nil {
		return pathway.Completion{}, err
	}
	if err := s.store.SaveProgress(ctx, c.Pathway); err != nil {
		return pathway.Completion{}, fmt.Errorf("save progress: %w", err)
	}
	s.log.Debug("node completed",
		"pathway_id", id,
		"node_id", nodeID,
		"first_time", c.FirstTime,
		"unlocked", len(c.Unlocked),
	)

	s.publish(ctx, events.Event{
		Type:      events.TypePathwayUpdated,
		PathwayID: id,
		OwnerID:   ownerID,
		At:        c.Pathway.UpdatedAt,
		Payload: map[string]any{
			"nodeId":    nodeID,
			"firstTime": c.FirstTime,
			"unlocked":  c.Unlocked,
			"progress":  c.Pathway.Progress(),
		},
	})
	if c.Spark != nil {
		s.publish(ctx, events.Event{
			Type:      events.TypeCuriositySpark,
			PathwayID: id,
			OwnerID:   ownerID,
			At:        c.Spark.ShownAt,
			Payload:   c.Spark,
		})
	}
	s.syncMirror(ctx, c.Pathway)
	return c, nil
}

func (s *PathwayService) Delete(ctx context.Context, ownerID, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.store.DeletePathway(ctx, id); err != nil {
		return err
	}
	if err := s.mirror.DeletePathway(ctx, id); err != nil {
		s.log.Warn("graph mirror delete failed", "pathway_id", id, "error", err)
	}
	s.log.Info("pathway deleted", "pathway_id", id, "owner_id", ownerID)
	return nil
}

func (s *PathwayService) owned(ctx context.Context, ownerID, id string) (pathway.Pathway, error) {
	p, err := s.store.GetPathway(ctx, id)
	if err != nil {
		return pathway.Pathway{}, err
	}
	if p.OwnerID != ownerID {
		return pathway.Pathway{}, fmt.Errorf("pathway %q: %w", id, ErrForbidden)
	}
	return p, nil
}

func (s *PathwayService) view(p pathway.Pathway, cfg pathway.LayoutConfig) PathwayView {
	return PathwayView{
		Pathway:  p,
		Layout:   pathway.ComputeLayout(p, cfg),
		Progress: p.Progress(),
	}
}

func (s *PathwayService) publish(ctx context.Context, ev events.Event) {
	if err := s.notifier.Publish(ctx, ev); err != nil {
		s.log.Warn("publish event failed", "type", ev.Type, "pathway_id", ev.PathwayID, "error", err)
	}
}

func (s *PathwayService) syncMirror(ctx context.Context, p pathway.Pathway) {
	if err := s.mirror.SyncPathway(ctx, p); err != nil {
		s.log.Warn("graph mirror sync failed", "pathway_id", p.ID, "error", err)
	}
}

package service

import (
	"context"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/andrewpaige1/eduengage-api/logger"
	"github.com/andrewpaige1/eduengage-api/pathway"
	"github.com/andrewpaige1/eduengage-api/synthesis"
)

type SynthesisStore interface {
	CreateSynthesis(ctx context.Context, s synthesis.Synthesis) error
	GetSynthesis(ctx context.Context, id string) (synthesis.Synthesis, error)
	ListSyntheses(ctx context.Context, ownerID string) ([]synthesis.Synthesis, error)
}

type SynthesisView struct {
	Synthesis synthesis.Synthesis `json:"synthesis"`
	Layout    synthesis.Layout    `json:"layout"`
}

type SynthesisService struct {
	store  SynthesisStore
	radial synthesis.RadialConfig
	log    *logger.Logger

	now   func() time.Time
	newID func() (string, error)
}

func NewSynthesisService(st SynthesisStore, radial synthesis.RadialConfig, baseLog *logger.Logger) *SynthesisService {
	return &SynthesisService{
		store:  st,
		radial: radial,
		log:    baseLog.With("service", "SynthesisService"),
		now:    time.Now,
		newID:  func() (string, error) { return gonanoid.New(pathway.PublicIDLength) },
	}
}

func (s *SynthesisService) Create(ctx context.Context, ownerID string, syn synthesis.Synthesis) (SynthesisView, error) {
	if err := synthesis.Validate(syn); err != nil {
		return SynthesisView{}, err
	}
	id, err := s.newID()
	if err != nil {
		return SynthesisView{}, fmt.Errorf("generate synthesis id: %w", err)
	}
	syn.ID = id
	syn.OwnerID = ownerID
	syn.CreatedAt = s.now().UTC()
	if err := s.store.CreateSynthesis(ctx, syn); err != nil {
		return SynthesisView{}, err
	}
	s.log.Info("synthesis created", "synthesis_id", id, "discussion_id", syn.DiscussionID, "nodes", len(syn.Nodes))
	return s.view(syn)
}

func (s *SynthesisService) Get(ctx context.Context, ownerID, id string) (SynthesisView, error) {
	syn, err := s.store.GetSynthesis(ctx, id)
	if err != nil {
		return SynthesisView{}, err
	}
	if syn.OwnerID != ownerID {
		return SynthesisView{}, fmt.Errorf("synthesis %q: %w", id, ErrForbidden)
	}
	return s.view(syn)
}

func (s *SynthesisService) List(ctx context.Context, ownerID string) ([]synthesis.Synthesis, error) {
	return s.store.ListSyntheses(ctx, ownerID)
}

func (s *SynthesisService) view(syn synthesis.Synthesis) (SynthesisView, error) {
	layout, err := synthesis.ComputeLayout(syn, s.radial)
	if err != nil {
		return SynthesisView{}, err
	}
	return SynthesisView{Synthesis: syn, Layout: layout}, nil
}

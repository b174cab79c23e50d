package handlers

import (
	"net/http"

	"github.com/andrewpaige1/eduengage-api/synthesis"
	"github.com/andrewpaige1/eduengage-api/utils"
)

type synthesisNodeRequest struct {
	ID       string `json:"id" validate:"required,max=64"`
	Label    string `json:"label" validate:"required,max=200"`
	Summary  string `json:"summary" validate:"max=2000"`
	Category string `json:"category" validate:"max=100"`
}

type synthesisEdgeRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
	Label  string `json:"label" validate:"max=200"`
}

type createSynthesisRequest struct {
	DiscussionID string                 `json:"discussionId" validate:"required,max=64"`
	Title        string                 `json:"title" validate:"required,max=200"`
	Summary      string                 `json:"summary" validate:"max=4000"`
	Nodes        []synthesisNodeRequest `json:"nodes" validate:"required,min=1,dive"`
	Edges        []synthesisEdgeRequest `json:"edges" validate:"dive"`
}

func (req createSynthesisRequest) toSynthesis() synthesis.Synthesis {
	s := synthesis.Synthesis{
		DiscussionID: req.DiscussionID,
		Title:        req.Title,
		Summary:      req.Summary,
		Nodes:        make([]synthesis.Node, 0, len(req.Nodes)),
		Edges:        make([]synthesis.Edge, 0, len(req.Edges)),
	}
	for _, n := range req.Nodes {
		s.Nodes = append(s.Nodes, synthesis.Node{ID: n.ID, Label: n.Label, Summary: n.Summary, Category: n.Category})
	}
	for _, e := range req.Edges {
		s.Edges = append(s.Edges, synthesis.Edge{Source: e.Source, Target: e.Target, Label: e.Label})
	}
	return s
}

func (h *Handler) CreateSynthesis(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req createSynthesisRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	view, err := h.Syntheses.Create(r.Context(), owner, req.toSynthesis())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) ListSyntheses(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	list, err := h.Syntheses.List(r.Context(), owner)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"syntheses": list})
}

func (h *Handler) GetSynthesis(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	view, err := h.Syntheses.Get(r.Context(), owner, r.PathValue("synthesisID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

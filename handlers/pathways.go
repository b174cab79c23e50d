package handlers

import (
	"errors"
	"net/http"

	"github.com/andrewpaige1/eduengage-api/apierr"
	"github.com/andrewpaige1/eduengage-api/generator"
	"github.com/andrewpaige1/eduengage-api/pathway"
	"github.com/andrewpaige1/eduengage-api/utils"
)

type nodeRequest struct {
	ID             string `json:"id" validate:"required,max=64"`
	Type           string `json:"type" validate:"required,oneof=video quiz reading exercise discussion"`
	Title          string `json:"title" validate:"required,max=200"`
	Description    string `json:"description" validate:"max=2000"`
	Topic          string `json:"topic" validate:"max=200"`
	MotivationText string `json:"motivationText" validate:"max=500"`
	Completed      bool   `json:"completed"`
	Unlocked       bool   `json:"unlocked"`
}

type edgeRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

type createPathwayRequest struct {
	Title       string        `json:"title" validate:"required,max=200"`
	Description string        `json:"description" validate:"max=2000"`
	Nodes       []nodeRequest `json:"nodes" validate:"required,min=1,dive"`
	Edges       []edgeRequest `json:"edges" validate:"dive"`
}

func (req createPathwayRequest) toPathway() pathway.Pathway {
	p := pathway.Pathway{
		Title:       req.Title,
		Description: req.Description,
		Nodes:       make([]pathway.Node, 0, len(req.Nodes)),
		Edges:       make([]pathway.Edge, 0, len(req.Edges)),
	}
	for _, n := range req.Nodes {
		p.Nodes = append(p.Nodes, pathway.Node{
			ID:             n.ID,
			Kind:           pathway.NodeKind(n.Type),
			Title:          n.Title,
			Description:    n.Description,
			Topic:          n.Topic,
			MotivationText: n.MotivationText,
			Completed:      n.Completed,
			Unlocked:       n.Unlocked,
		})
	}
	for _, e := range req.Edges {
		p.Edges = append(p.Edges, pathway.Edge{Source: e.Source, Target: e.Target})
	}
	return p
}

type generatePathwayRequest struct {
	Strengths        []string `json:"strengths" validate:"max=20,dive,max=100"`
	Weaknesses       []string `json:"weaknesses" validate:"max=20,dive,max=100"`
	Interests        []string `json:"interests" validate:"max=20,dive,max=100"`
	RecentActivities []string `json:"recentActivities" validate:"max=50"`
}

type completeNodeResponse struct {
	pathway.Completion
	Progress pathway.Progress `json:"progress"`
}

func (h *Handler) CreatePathway(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req createPathwayRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	view, err := h.Pathways.Ingest(r.Context(), owner, req.toPathway())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) GeneratePathway(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req generatePathwayRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	view, err := h.Pathways.Generate(r.Context(), owner, generator.Request{
		Strengths:        req.Strengths,
		Weaknesses:       req.Weaknesses,
		Interests:        req.Interests,
		RecentActivities: req.RecentActivities,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) ListPathways(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	list, err := h.Pathways.List(r.Context(), owner)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"pathways": list})
}

func (h *Handler) GetPathway(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	view, err := h.Pathways.Get(r.Context(), owner, r.PathValue("pathwayID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) GetPathwayLayout(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	ranking := r.URL.Query().Get("ranking")
	switch ranking {
	case "", pathway.RankAfterParents.String(), pathway.RankFirstReach.String():
	default:
		h.respondError(w, r, apierr.New(http.StatusBadRequest, "invalid_ranking",
			errors.New("ranking must be after-parents or first-reach")))
		return
	}
	layout, err := h.Pathways.Layout(r.Context(), owner, r.PathValue("pathwayID"), ranking)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, layout)
}

// CompleteNode is the node click callback.
func (h *Handler) CompleteNode(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	c, err := h.Pathways.Complete(r.Context(), owner, r.PathValue("pathwayID"), r.PathValue("nodeID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, completeNodeResponse{Completion: c, Progress: c.Pathway.Progress()})
}

func (h *Handler) DeletePathway(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.Pathways.Delete(r.Context(), owner, r.PathValue("pathwayID")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

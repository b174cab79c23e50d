package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/andrewpaige1/eduengage-api/apierr"
	"github.com/andrewpaige1/eduengage-api/logger"
	"github.com/andrewpaige1/eduengage-api/middleware"
	"github.com/andrewpaige1/eduengage-api/service"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	Pathways  *service.PathwayService
	Syntheses *service.SynthesisService
	log       *logger.Logger
	validate  *validator.Validate
}

func New(pathways *service.PathwayService, syntheses *service.SynthesisService, baseLog *logger.Logger) *Handler {
	return &Handler{
		Pathways:  pathways,
		Syntheses: syntheses,
		log:       baseLog.With("component", "Handler"),
		validate:  validator.New(),
	}
}

// Register mounts the authenticated API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	// Pathways
	mux.HandleFunc("POST /api/pathways", h.CreatePathway)
	mux.HandleFunc("POST /api/pathways/generate", h.GeneratePathway)
	mux.HandleFunc("GET /api/pathways", h.ListPathways)
	mux.HandleFunc("GET /api/pathways/{pathwayID}", h.GetPathway)
	mux.HandleFunc("GET /api/pathways/{pathwayID}/layout", h.GetPathwayLayout)
	mux.HandleFunc("POST /api/pathways/{pathwayID}/nodes/{nodeID}/complete", h.CompleteNode)
	mux.HandleFunc("DELETE /api/pathways/{pathwayID}", h.DeletePathway)

	// Syntheses
	mux.HandleFunc("POST /api/syntheses", h.CreateSynthesis)
	mux.HandleFunc("GET /api/syntheses", h.ListSyntheses)
	mux.HandleFunc("GET /api/syntheses/{synthesisID}", h.GetSynthesis)
}

// decode reads a JSON body into dst and runs its validate tags.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apierr.New(http.StatusBadRequest, "invalid_json", errors.New("request body is empty"))
		}
		return apierr.New(http.StatusBadRequest, "invalid_json", fmt.Errorf("invalid request body: %w", err))
	}
	return h.validate.Struct(dst)
}

func ownerID(r *http.Request) (string, error) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok || u.Auth0ID == "" {
		return "", apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("no authenticated user"))
	}
	return u.Auth0ID, nil
}

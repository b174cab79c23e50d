package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/andrewpaige1/eduengage-api/apierr"
	"github.com/andrewpaige1/eduengage-api/generator"
	"github.com/andrewpaige1/eduengage-api/pathway"
	"github.com/andrewpaige1/eduengage-api/service"
	"github.com/andrewpaige1/eduengage-api/store"
	"github.com/andrewpaige1/eduengage-api/synthesis"
	"github.com/andrewpaige1/eduengage-api/utils"
)

func toAPIError(err error) *apierr.Error {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apierr.New(http.StatusUnprocessableEntity, "validation_failed", validationMessage(verrs))
	}

	switch {
	case errors.Is(err, pathway.ErrMalformedGraph), errors.Is(err, synthesis.ErrMalformedGraph):
		return apierr.New(http.StatusUnprocessableEntity, "malformed_graph", err)
	case errors.Is(err, generator.ErrEmptyProfile):
		return apierr.New(http.StatusUnprocessableEntity, "empty_profile", err)
	case errors.Is(err, pathway.ErrNodeNotFound):
		return apierr.New(http.StatusNotFound, "node_not_found", err)
	case errors.Is(err, pathway.ErrGateClosed):
		return apierr.New(http.StatusConflict, "gate_closed", err)
	case errors.Is(err, store.ErrNotFound):
		return apierr.New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrForbidden):
		return apierr.New(http.StatusForbidden, "forbidden", err)
	}
	return apierr.New(http.StatusInternalServerError, "internal", err)
}

func validationMessage(verrs validator.ValidationErrors) error {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(parts, "; "))
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	ae := toAPIError(err)
	status := ae.StatusCode()
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	utils.WriteJSON(w, status, ae.Body())
}

package handlers

import "net/http"

// Routes builds the full route table. protect wraps every /api route with
// token validation and user sync.
func (h *Handler) Routes(protect func(http.Handler) http.Handler, checks map[string]Checker) http.Handler {
	api := http.NewServeMux()
	h.Register(api)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", Health(checks))
	mux.Handle("/api/", protect(api))
	return mux
}

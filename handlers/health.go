package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/andrewpaige1/eduengage-api/utils"
)

// Checker reports whether a dependency is usable.
type Checker func(ctx context.Context) error

// Health answers liveness probes. Named checks are reported but only the
// "database" check turns the response unhealthy.
func Health(checks map[string]Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := map[string]string{}
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				report[name] = err.Error()
				if name == "database" {
					status = http.StatusServiceUnavailable
				}
				continue
			}
			report[name] = "ok"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "unavailable"
		}
		utils.WriteJSON(w, status, map[string]any{"status": state, "checks": report})
	}
}

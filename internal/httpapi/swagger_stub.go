//go:build !swagger

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountSwagger answers /swagger/ with a JSON 404 naming the build tag that
// enables the UI.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "swagger UI not built in; rebuild with -tags=swagger")
	})
}

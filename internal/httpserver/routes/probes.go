package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/reelmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reelmark/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/reelmark/internal/httpserver/mw"
)

func init() { Register("ops", registerOps) }

// registerOps mounts the probes and the operator endpoints. /infra and
// /reload are restricted to the allow-lists.
func registerOps(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	r.Get("/readyz", handlers.Readyz(d))

	restricted := r.With(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	)
	restricted.Get("/infra", handlers.Infra(d))
	restricted.Post("/reload", handlers.Reload(d))
}

package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/reelmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reelmark/internal/httpserver/handlers"
)

func init() { Register("thumbnail", registerThumbnail) }

func registerThumbnail(r chi.Router, d deps.Deps) {
	r.With(apiGuards(d)...).Post("/api/thumbnail", handlers.Thumbnail(d))
}

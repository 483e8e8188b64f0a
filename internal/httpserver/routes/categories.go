package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/reelmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reelmark/internal/httpserver/handlers"
)

func init() { Register("categories", registerCategories) }

func registerCategories(r chi.Router, d deps.Deps) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Use(apiGuards(d)...)
		r.Get("/", handlers.ListCategories(d))
		r.Post("/", handlers.AddCategory(d))
	})
}

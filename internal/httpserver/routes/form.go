package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/reelmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reelmark/internal/httpserver/handlers"
)

func init() { Register("form", registerForm) }

func registerForm(r chi.Router, d deps.Deps) {
	r.Route("/api/form", func(r chi.Router) {
		r.Use(apiGuards(d)...)
		r.Get("/", handlers.FormState(d))
		r.Patch("/", handlers.FormPatch(d))
		r.Post("/new", handlers.FormNew(d))
		r.Post("/edit/{id}", handlers.FormEdit(d))
		r.Post("/cancel", handlers.FormCancel(d))
		r.Post("/toggle", handlers.FormToggle(d))
		r.Post("/category", handlers.FormCategory(d))
		r.Post("/suggest", handlers.FormSuggest(d))
		r.Post("/thumbnail", handlers.FormThumbnail(d))
		r.Post("/submit", handlers.FormSubmit(d))
	})
}

package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/reelmark/internal/collection"
	"github.com/MrSnakeDoc/reelmark/internal/domain"
	"github.com/MrSnakeDoc/reelmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reelmark/internal/logger"
)

type categoriesResponse struct {
	All        string   `json:"all"`
	Categories []string `json:"categories"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

type categoryResponse struct {
	Name  string `json:"name"`
	Added bool   `json:"added"`
}

func ListCategories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, categoriesResponse{
			All:        domain.AllCategories,
			Categories: d.Collection.Categories(),
		})
	}
}

// AddCategory registers a category with the store. Known names are a no-op.
func AddCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req categoryRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error(), "")
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" || name == domain.AllCategories {
			fail(w, d.Logger, &domain.ValidationError{Field: "name", Message: "category name is required"})
			return
		}

		if d.Collection.HasCategory(name) {
			writeJSON(w, http.StatusOK, categoryResponse{Name: name})
			return
		}

		res := d.Gateway.AddCategory(r.Context(), name)
		if !res.Success {
			fail(w, d.Logger, &collection.SaveError{Kind: collection.Add, ID: fmt.Sprintf("category %q", name), Result: res})
			return
		}
		d.Collection.AddCategory(name)
		d.Logger.Info("category added", logger.String("category", name))
		writeJSON(w, http.StatusCreated, categoryResponse{Name: name, Added: true})
	}
}

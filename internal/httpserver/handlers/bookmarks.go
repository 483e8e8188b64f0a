package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/reelmark/internal/collection"
	"github.com/MrSnakeDoc/reelmark/internal/domain"
	"github.com/MrSnakeDoc/reelmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reelmark/internal/logger"
)

type filterJSON struct {
	Category string `json:"category"`
	Query    string `json:"q"`
}

type listResponse struct {
	State     string            `json:"state"`
	Filter    filterJSON        `json:"filter"`
	Count     int               `json:"count"`
	Bookmarks []domain.Bookmark `json:"bookmarks"`
}

// bookmarkRequest is the body of create and update.
type bookmarkRequest struct {
	URL       string   `json:"url"`
	Memo      string   `json:"memo"`
	Category  []string `json:"category"`
	Thumbnail string   `json:"thumbnail"`
}

func (b bookmarkRequest) draft() domain.Draft {
	return domain.Draft{URL: b.URL, Memo: b.Memo, Category: b.Category, Thumbnail: b.Thumbnail}
}

// ListBookmarks returns the derived view. The category and q parameters,
// when present, update the collection filter first.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Has("category") {
			d.Collection.SetCategory(strings.TrimSpace(q.Get("category")))
		}
		if q.Has("q") {
			d.Collection.SetQuery(q.Get("q"))
		}

		view := d.Collection.View()
		f := d.Collection.Filter()
		writeJSON(w, http.StatusOK, listResponse{
			State:     d.Collection.State().String(),
			Filter:    filterJSON{Category: f.Category, Query: f.Query},
			Count:     len(view),
			Bookmarks: view,
		})
	}
}

func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		b, ok := d.Collection.Get(id)
		if !ok {
			fail(w, d.Logger, domain.ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

// CreateBookmark saves a bookmark without going through the form.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bookmarkRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error(), "")
			return
		}

		candidate := domain.Bookmark{URL: strings.TrimSpace(req.URL), Category: req.Category}
		if err := candidate.Validate(); err != nil {
			fail(w, d.Logger, err)
			return
		}

		b := domain.EnsureThumbnail(domain.NewBookmark(d.IDs, d.Now(), req.draft()))
		if err := d.Collection.Persist(r.Context(), d.Gateway, collection.AddOf(b)); err != nil {
			fail(w, d.Logger, err)
			return
		}

		d.Logger.Info("bookmark created", logger.String("id", b.ID))
		writeJSON(w, http.StatusCreated, b)
	}
}

// UpdateBookmark replaces the editable fields of a bookmark. Id and date are kept.
func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		existing, ok := d.Collection.Get(id)
		if !ok {
			fail(w, d.Logger, domain.ErrNotFound)
			return
		}

		var req bookmarkRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error(), "")
			return
		}

		b := existing.WithEdits(req.draft())
		if err := b.Validate(); err != nil {
			fail(w, d.Logger, err)
			return
		}
		b = domain.EnsureThumbnail(b)

		if err := d.Collection.Persist(r.Context(), d.Gateway, collection.UpdateOf(b)); err != nil {
			fail(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, ok := d.Collection.Get(id); !ok {
			fail(w, d.Logger, domain.ErrNotFound)
			return
		}
		if err := d.Collection.Persist(r.Context(), d.Gateway, collection.DeleteOf(id)); err != nil {
			fail(w, d.Logger, err)
			return
		}
		d.Logger.Info("bookmark deleted", logger.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

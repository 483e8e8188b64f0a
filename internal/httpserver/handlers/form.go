package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/reelmark/internal/domain"
	"github.com/MrSnakeDoc/reelmark/internal/form"
	"github.com/MrSnakeDoc/reelmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reelmark/internal/suggest"
)

type toggleRequest struct {
	Category string `json:"category"`
}

type toggleResponse struct {
	Selected bool          `json:"selected"`
	Form     form.Snapshot `json:"form"`
}

type suggestResponse struct {
	Suggestion suggest.Suggestion `json:"suggestion"`
	Form       form.Snapshot      `json:"form"`
}

type submitResponse struct {
	Bookmark domain.Bookmark `json:"bookmark"`
	Form     form.Snapshot   `json:"form"`
}

// formAction runs fn and answers with the form snapshot.
func formAction(d deps.Deps, fn func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(r); err != nil {
			fail(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, d.Form.Snapshot())
	}
}

func FormState(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Form.Snapshot())
	}
}

func FormNew(d deps.Deps) http.HandlerFunc {
	return formAction(d, func(*http.Request) error { return d.Form.OpenNew() })
}

func FormEdit(d deps.Deps) http.HandlerFunc {
	return formAction(d, func(r *http.Request) error { return d.Form.OpenEdit(chi.URLParam(r, "id")) })
}

func FormCancel(d deps.Deps) http.HandlerFunc {
	return formAction(d, func(*http.Request) error { return d.Form.Cancel() })
}

func FormPatch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p form.Patch
		if err := decode(w, r, &p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error(), "")
			return
		}
		if err := d.Form.Update(p); err != nil {
			fail(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, d.Form.Snapshot())
	}
}

func FormToggle(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req toggleRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error(), "")
			return
		}
		on, err := d.Form.Toggle(req.Category)
		if err != nil {
			fail(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toggleResponse{Selected: on, Form: d.Form.Snapshot()})
	}
}

func FormCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req categoryRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error(), "")
			return
		}
		if err := d.Form.AddCategory(r.Context(), req.Name); err != nil {
			fail(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, d.Form.Snapshot())
	}
}

func FormSuggest(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := d.Form.Suggest(r.Context())
		if err != nil {
			fail(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, suggestResponse{Suggestion: s, Form: d.Form.Snapshot()})
	}
}

// FormThumbnail compresses an upload and sets it as the form thumbnail.
func FormThumbnail(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Form.State() != form.Editing {
			fail(w, d.Logger, stateError(d.Form.State()))
			return
		}
		res, err := compressUpload(w, r, d)
		if err != nil {
			failUpload(w, d, err)
			return
		}
		if err := d.Form.Update(form.Patch{Thumbnail: &res.DataURL}); err != nil {
			fail(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, d.Form.Snapshot())
	}
}

func FormSubmit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := d.Form.Submit(r.Context())
		if err != nil {
			fail(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, submitResponse{Bookmark: b, Form: d.Form.Snapshot()})
	}
}

func stateError(s form.State) error {
	if s == form.Submitting {
		return form.ErrSubmitting
	}
	return form.ErrNotEditing
}

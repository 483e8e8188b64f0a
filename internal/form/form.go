// Package form drives the add/edit sheet: it holds the draft being edited,
// the selected categories, and submits through the collection.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/reelmark/internal/collection"
	"github.com/MrSnakeDoc/reelmark/internal/domain"
	"github.com/MrSnakeDoc/reelmark/internal/gateway"
	"github.com/MrSnakeDoc/reelmark/internal/logger"
	"github.com/MrSnakeDoc/reelmark/internal/suggest"
)

var (
	// ErrSubmitting is returned by mutating calls while a submit is in flight.
	ErrSubmitting = errors.New("form is submitting")
	// ErrNotEditing is returned when no form is open.
	ErrNotEditing = errors.New("form is not open")
	// ErrUnknownCategory is returned when toggling a label that is not known.
	ErrUnknownCategory = errors.New("unknown category")
)

// State is the form lifecycle.
type State int

const (
	Idle State = iota
	Editing
	Submitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Store is what the form needs from the storage gateway.
type Store interface {
	collection.Writer
	AddCategory(ctx context.Context, name string) gateway.Result
}

// Suggester proposes memo, categories and thumbnail for a url.
type Suggester interface {
	Suggest(ctx context.Context, rawURL string, known *domain.CategorySet) suggest.Suggestion
}

// Patch updates the free-text fields. Nil fields are left alone.
type Patch struct {
	URL       *string `json:"url,omitempty"`
	Memo      *string `json:"memo,omitempty"`
	Thumbnail *string `json:"thumbnail,omitempty"`
}

// Snapshot is a read-only copy of the form.
type Snapshot struct {
	State     string   `json:"state"`
	Mode      string   `json:"mode,omitempty"` // "new" | "edit"
	EditingID string   `json:"editingId,omitempty"`
	URL       string   `json:"url"`
	Memo      string   `json:"memo"`
	Thumbnail string   `json:"thumbnail"`
	Selected  []string `json:"selected"`
	Known     []string `json:"known"`
	Error     string   `json:"error,omitempty"`
}

// Options configures a Controller.
type Options struct {
	DefaultCategory string
	IDs             *domain.IDGenerator
	Now             func() time.Time
}

// Controller is safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	col     *collection.Collection
	store   Store
	suggest Suggester
	logger  logger.Logger

	ids             *domain.IDGenerator
	now             func() time.Time
	defaultCategory string

	state    State
	session  uint64
	original *domain.Bookmark // set when editing an existing bookmark
	url      string
	memo     string
	thumb    string
	selected []string
	lastErr  string
}

// New returns an idle controller.
func New(col *collection.Collection, store Store, sug Suggester, opts Options, log logger.Logger) *Controller {
	if opts.IDs == nil {
		opts.IDs = &domain.IDGenerator{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultCategory == "" {
		opts.DefaultCategory = domain.DefaultSelection
	}
	return &Controller{
		col:             col,
		store:           store,
		suggest:         sug,
		logger:          log.With(logger.Component("form")),
		ids:             opts.IDs,
		now:             opts.Now,
		defaultCategory: opts.DefaultCategory,
	}
}

// OpenNew opens an empty form with the default category selected.
func (c *Controller) OpenNew() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Submitting {
		return ErrSubmitting
	}
	c.reset()
	c.state = Editing
	c.selected = []string{c.defaultCategory}
	return nil
}

// OpenEdit opens the form pre-filled with the bookmark id.
func (c *Controller) OpenEdit(id string) error {
	b, ok := c.col.Get(id)
	if !ok {
		return fmt.Errorf("edit %s: %w", id, domain.ErrNotFound)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Submitting {
		return ErrSubmitting
	}
	c.reset()
	c.state = Editing
	c.original = &b
	c.url = b.URL
	c.memo = b.Memo
	c.thumb = b.Thumbnail
	c.selected = append([]string(nil), b.Category...)
	return nil
}

// Cancel closes the form.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Submitting {
		return ErrSubmitting
	}
	c.reset()
	return nil
}

// Update applies p to the open form.
func (c *Controller) Update(p Patch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editableLocked(); err != nil {
		return err
	}
	if p.URL != nil {
		c.url = *p.URL
	}
	if p.Memo != nil {
		c.memo = *p.Memo
	}
	if p.Thumbnail != nil {
		c.thumb = *p.Thumbnail
	}
	return nil
}

// Toggle adds label to the selection, or removes it if already selected.
// It reports whether label is selected afterwards.
func (c *Controller) Toggle(label string) (bool, error) {
	label = strings.TrimSpace(label)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editableLocked(); err != nil {
		return false, err
	}
	for i, s := range c.selected {
		if s == label {
			c.selected = append(c.selected[:i], c.selected[i+1:]...)
			return false, nil
		}
	}
	if !c.col.HasCategory(label) {
		return false, fmt.Errorf("%w: %q", ErrUnknownCategory, label)
	}
	c.selected = append(c.selected, label)
	return true, nil
}

// AddCategory registers name with the store if it is new and selects it.
// On failure nothing changes.
func (c *Controller) AddCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || name == domain.AllCategories {
		return &domain.ValidationError{Field: "category", Message: "category name is required"}
	}

	c.mu.Lock()
	if err := c.editableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	session := c.session
	c.mu.Unlock()

	if !c.col.HasCategory(name) {
		res := c.store.AddCategory(ctx, name)
		if !res.Success {
			return fmt.Errorf("failed to add category %q: %s", name, res.Message)
		}
		c.col.AddCategory(name)
		c.logger.Info("category added", logger.String("category", name))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == session && c.state == Editing {
		c.selectLocked(name)
	}
	return nil
}

// Suggest asks the suggestion service about the current url and folds the
// answer into the form: the memo only if empty, the selection only if at
// least one known category came back, and the thumbnail always.
func (c *Controller) Suggest(ctx context.Context) (suggest.Suggestion, error) {
	c.mu.Lock()
	if err := c.editableLocked(); err != nil {
		c.mu.Unlock()
		return suggest.Suggestion{}, err
	}
	rawURL := strings.TrimSpace(c.url)
	session := c.session
	c.mu.Unlock()

	if rawURL == "" {
		return suggest.Suggestion{}, &domain.ValidationError{Field: "url", Message: "url is required before asking for suggestions"}
	}

	s := c.suggest.Suggest(ctx, rawURL, c.col.KnownCategories())

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != session || c.state != Editing {
		// The form was closed or reopened meanwhile.
		return s, nil
	}
	if c.memo == "" && s.Memo != "" {
		c.memo = s.Memo
	}
	if len(s.Categories) > 0 {
		c.selected = nil
		for _, label := range s.Categories {
			c.selectLocked(label)
		}
	}
	c.thumb = s.Thumbnail
	return s, nil
}

// Submit validates the form and saves it. Validation failures return a
// *domain.ValidationError before any store call. A failed save leaves the
// form open with the error message.
func (c *Controller) Submit(ctx context.Context) (domain.Bookmark, error) {
	c.mu.Lock()
	if err := c.editableLocked(); err != nil {
		c.mu.Unlock()
		return domain.Bookmark{}, err
	}

	draft := domain.Draft{
		URL:       c.url,
		Memo:      c.memo,
		Category:  append([]string(nil), c.selected...),
		Thumbnail: c.thumb,
	}

	var (
		b        domain.Bookmark
		mutation collection.Mutation
	)
	if c.original != nil {
		b = c.original.WithEdits(draft)
	} else {
		b = domain.Bookmark{URL: strings.TrimSpace(draft.URL), Category: draft.Category}
	}
	if err := b.Validate(); err != nil {
		c.mu.Unlock()
		return domain.Bookmark{}, err
	}

	if c.original != nil {
		b = domain.EnsureThumbnail(b)
		mutation = collection.UpdateOf(b)
	} else {
		b = domain.EnsureThumbnail(domain.NewBookmark(c.ids, c.now(), draft))
		mutation = collection.AddOf(b)
	}
	c.state = Submitting
	c.lastErr = ""
	c.mu.Unlock()

	err := c.col.Persist(ctx, c.store, mutation)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.state = Editing
		c.lastErr = err.Error()
		return domain.Bookmark{}, err
	}
	c.logger.Info("bookmark saved",
		logger.String("id", b.ID),
		logger.String("kind", mutation.Kind.String()))
	c.reset()
	return b, nil
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Snapshot returns a copy of the form.
func (c *Controller) Snapshot() Snapshot {
	known := c.col.Categories()

	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		State:     c.state.String(),
		URL:       c.url,
		Memo:      c.memo,
		Thumbnail: c.thumb,
		Selected:  append([]string{}, c.selected...),
		Known:     known,
		Error:     c.lastErr,
	}
	if c.state != Idle {
		s.Mode = "new"
		if c.original != nil {
			s.Mode = "edit"
			s.EditingID = c.original.ID
		}
	}
	return s
}

func (c *Controller) editableLocked() error {
	switch c.state {
	case Submitting:
		return ErrSubmitting
	case Idle:
		return ErrNotEditing
	}
	return nil
}

func (c *Controller) selectLocked(label string) {
	for _, s := range c.selected {
		if s == label {
			return
		}
	}
	c.selected = append(c.selected, label)
}

func (c *Controller) reset() {
	c.session++
	c.state = Idle
	c.original = nil
	c.url = ""
	c.memo = ""
	c.thumb = ""
	c.selected = nil
	c.lastErr = ""
}

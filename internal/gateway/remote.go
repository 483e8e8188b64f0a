package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/MrSnakeDoc/reelmark/internal/domain"
	"github.com/MrSnakeDoc/reelmark/internal/logger"
	"github.com/MrSnakeDoc/reelmark/internal/utils"
)

// Endpoint actions understood by the spreadsheet web app.
const (
	ActionGetEntries    = "getEntries"
	ActionGetCategories = "getCategories"
	ActionAddEntry      = "addEntry"
	ActionUpdateEntry   = "updateEntry"
	ActionDeleteEntry   = "deleteEntry"
	ActionAddCategory   = "addCategory"
)

// maxResponseBytes caps what we read back from the endpoint. Thumbnails are
// inlined, so listings can be large.
const maxResponseBytes = 32 << 20

// RemoteOptions configures the RemoteHTTP strategy.
type RemoteOptions struct {
	URL       string        // web app URL
	WriteOnly bool          // true => POST responses are not read
	Timeout   time.Duration // HTTP client timeout
	Client    *http.Client  // optional, overrides Timeout
}

// Remote is the RemoteHTTP strategy, talking to the spreadsheet web app.
type Remote struct {
	endpoint  *url.URL
	writeOnly bool
	client    *http.Client
	logger    logger.Logger
}

type envelope struct {
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type writeRequest struct {
	Action string `json:"action"`
	Data   any    `json:"data"`
}

type deletePayload struct {
	ID string `json:"id"`
}

type categoryPayload struct {
	Category string `json:"category"`
}

// NewRemote validates the endpoint URL and builds the transport.
func NewRemote(opts RemoteOptions, log logger.Logger) (*Remote, error) {
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid endpoint url %q: scheme must be http or https", opts.URL)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &Remote{
		endpoint:  u,
		writeOnly: opts.WriteOnly,
		client:    client,
		logger:    log.With(logger.Component("remote")),
	}, nil
}

func (r *Remote) Name() string { return "remote" }

func (r *Remote) ListBookmarks(ctx context.Context) ([]domain.Bookmark, error) {
	var bookmarks []domain.Bookmark
	if err := r.get(ctx, ActionGetEntries, &bookmarks); err != nil {
		return nil, err
	}
	if bookmarks == nil {
		bookmarks = []domain.Bookmark{}
	}
	return bookmarks, nil
}

func (r *Remote) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := r.get(ctx, ActionGetCategories, &categories); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

func (r *Remote) AddBookmark(ctx context.Context, b domain.Bookmark) error {
	return r.post(ctx, ActionAddEntry, b)
}

func (r *Remote) UpdateBookmark(ctx context.Context, b domain.Bookmark) error {
	return r.post(ctx, ActionUpdateEntry, b)
}

func (r *Remote) DeleteBookmark(ctx context.Context, id string) error {
	return r.post(ctx, ActionDeleteEntry, deletePayload{ID: id})
}

func (r *Remote) AddCategory(ctx context.Context, name string) error {
	return r.post(ctx, ActionAddCategory, categoryPayload{Category: name})
}

func (r *Remote) get(ctx context.Context, action string, out any) error {
	u := *r.endpoint
	q := u.Query()
	q.Set("action", action)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", action, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", action, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: endpoint returned %s", action, resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", action, err)
	}
	if env.Success != nil && !*env.Success {
		return fmt.Errorf("%s: %s", action, messageOr(env.Message, "endpoint reported failure"))
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: failed to decode data: %w", action, err)
	}
	return nil
}

func (r *Remote) post(ctx context.Context, action string, data any) error {
	body, err := json.Marshal(writeRequest{Action: action, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", action, err)
	}
	defer utils.Close(resp.Body)

	if r.writeOnly {
		// The outcome is not observable here: no transport error counts as success.
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			r.logger.Warn("write-only endpoint answered with a non-2xx status, assuming success",
				logger.String("action", action),
				logger.Int("status", resp.StatusCode))
		}
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: endpoint returned %s", action, resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%s: failed to decode response: %w", action, err)
	}
	if env.Success != nil && !*env.Success {
		return fmt.Errorf("%s: %s", action, messageOr(env.Message, "endpoint reported failure"))
	}
	return nil
}

func messageOr(msg, def string) string {
	if msg != "" {
		return msg
	}
	return def
}

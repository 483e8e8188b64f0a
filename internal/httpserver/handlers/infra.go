package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/reelmark/internal/collection"
	"github.com/MrSnakeDoc/reelmark/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Bookmarks  *int   `json:"bookmarks,omitempty"`
	Pending    *int   `json:"pending,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := d.Collection.Count()
		pending := d.Collection.PendingCount()
		lastReload := d.Collection.LastReload()
		lastReloadStr := "never"
		if !lastReload.IsZero() {
			lastReloadStr = lastReload.Format("2006-01-02 15:04:05")
		}

		components := map[string]componentStatus{
			"collection": {
				OK:         d.Collection.State() == collection.Ready,
				Bookmarks:  &count,
				Pending:    &pending,
				LastReload: lastReloadStr,
				Mode:       d.Collection.State().String(),
			},
			"storage":     checkStorage(r.Context(), d),
			"suggestions": checkSuggestions(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

func overallStatus(components map[string]componentStatus) string {
	if c, ok := components["collection"]; ok && !c.OK {
		return "starting"
	}
	if s, ok := components["storage"]; ok && !s.OK {
		return "degraded" // writes will fail, reads come from the fallback slot
	}
	return "ok"
}

func checkStorage(ctx context.Context, d deps.Deps) componentStatus {
	mode := d.Gateway.Transport()
	if d.Bridge == nil {
		return componentStatus{OK: true, Mode: mode}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Bridge.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   mode,
			Impact: "writes-failing",
			Error:  err.Error(),
		}
	}
	return componentStatus{OK: true, Mode: mode}
}

func checkSuggestions(d deps.Deps) componentStatus {
	if d.Suggester == nil || !d.Suggester.Enabled() {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "random-placeholder-thumbnails",
		}
	}
	return componentStatus{OK: true, Mode: "enabled"}
}

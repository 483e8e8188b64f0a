package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/reelmark/internal/collection"
	"github.com/MrSnakeDoc/reelmark/internal/domain"
	"github.com/MrSnakeDoc/reelmark/internal/form"
	"github.com/MrSnakeDoc/reelmark/internal/gateway"
	"github.com/MrSnakeDoc/reelmark/internal/logger"
	"github.com/MrSnakeDoc/reelmark/internal/suggest"
	"github.com/MrSnakeDoc/reelmark/internal/thumbnail"
)

// Pinger is implemented by transports that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts    []string // Host headers allowed to access the server
	AllowedCIDRS    []string // IPs allowed to access the API and probes
	AllowedOrigins  []string // CORS origins for the web UI ("*" for any)
	TrustProxy      bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateLimitBurst  int      // write routes bucket capacity per client IP
	RateLimitPerMin int      // write routes refill per minute per client IP
	MaxUploadBytes  int64    // thumbnail upload cap

	Gateway    *gateway.Gateway       // storage facade
	Bridge     Pinger                 // host bridge, nil unless the bridge transport is active
	Collection *collection.Collection // confirmed + pending bookmarks
	Form       *form.Controller       // add/edit sheet
	Suggester  *suggest.Suggester     // AI suggestions
	Thumbnails *thumbnail.Compressor  // upload compressor
	IDs        *domain.IDGenerator    // shared with the form so ids stay increasing

	ReloadTrigger chan struct{} // Channel to trigger a manual collection reload
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}

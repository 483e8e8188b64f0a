package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/reelmark/internal/collection"
	"github.com/MrSnakeDoc/reelmark/internal/config"
	"github.com/MrSnakeDoc/reelmark/internal/domain"
	"github.com/MrSnakeDoc/reelmark/internal/form"
	"github.com/MrSnakeDoc/reelmark/internal/gateway"
	"github.com/MrSnakeDoc/reelmark/internal/httpserver"
	"github.com/MrSnakeDoc/reelmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reelmark/internal/logger"
	"github.com/MrSnakeDoc/reelmark/internal/redis"
	"github.com/MrSnakeDoc/reelmark/internal/scheduler"
	"github.com/MrSnakeDoc/reelmark/internal/sources/seed"
	badgerslot "github.com/MrSnakeDoc/reelmark/internal/store/badger"
	redisstore "github.com/MrSnakeDoc/reelmark/internal/store/redis"
	"github.com/MrSnakeDoc/reelmark/internal/suggest"
	"github.com/MrSnakeDoc/reelmark/internal/thumbnail"
	"github.com/MrSnakeDoc/reelmark/internal/utils"
	"github.com/MrSnakeDoc/reelmark/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	slotCloser  io.Closer
	reloader    *scheduler.CollectionReloader
}

// storage is what the transport selection hands back to New.
type storage struct {
	transport   gateway.Transport
	fallback    gateway.Slot
	bridge      deps.Pinger
	redisClient *goredis.Client
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	categories, err := seed.Resolve(cfg.CategoryFile, cfg.DefaultCategory)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed categories: %w", err)
	}
	loggerClient.Info("seed categories resolved",
		logger.Int("count", len(categories.Categories)),
		logger.String("default", categories.Default))

	generator, err := suggest.NewGenerator(context.Background(), suggest.GeminiOptions{
		APIKey:  cfg.AIAPIKey,
		Model:   cfg.AIModel,
		BaseURL: cfg.AIBaseURL,
		Timeout: cfg.AITimeout,
	})
	if err != nil {
		return nil, err
	}

	slot, slotCloser, err := openSlot(cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	st, err := openTransport(cfg, slot, loggerClient)
	if err != nil {
		if slotCloser != nil {
			utils.MustClose(slotCloser)
		}
		return nil, err
	}

	gw := gateway.New(st.transport, st.fallback, loggerClient)
	col := collection.New(gw, categories.Categories, loggerClient)

	suggester := suggest.New(
		generator,
		suggest.NewScraper(cfg.ScrapeTimeout),
		loggerClient,
	)
	if !suggester.Enabled() {
		loggerClient.Info("no AI key configured, suggestions fall back to placeholders")
	}

	ids := &domain.IDGenerator{}
	formController := form.New(col, gw, suggester, form.Options{
		DefaultCategory: categories.Default,
		IDs:             ids,
	}, loggerClient)

	// Manual reload trigger, shared with the /reload handler
	reloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewCollectionReloader(col, loggerClient, cfg.ReloadInterval, reloadTrigger)

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		AllowedOrigins:  cfg.AllowedOrigins,
		TrustProxy:      cfg.TrustProxy,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
		MaxUploadBytes:  cfg.MaxUploadBytes,
		Gateway:         gw,
		Bridge:          st.bridge,
		Collection:      col,
		Form:            formController,
		Suggester:       suggester,
		Thumbnails:      thumbnail.New(thumbnail.Options{MaxWidth: cfg.ThumbMaxWidth, Quality: cfg.ThumbQuality}),
		IDs:             ids,
		ReloadTrigger:   reloadTrigger,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: st.redisClient,
		slotCloser:  slotCloser,
		reloader:    reloader,
	}, nil
}

// openSlot opens the badger slot when a directory is configured, an in-memory
// slot otherwise. The closer is nil for the in-memory slot.
func openSlot(cfg *config.Config, log logger.Logger) (gateway.Slot, io.Closer, error) {
	if cfg.FallbackDir == "" {
		log.Warn("no fallback directory configured, local data will not survive a restart")
		return gateway.NewMemorySlot(), nil, nil
	}
	if err := os.MkdirAll(cfg.FallbackDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create fallback directory: %w", err)
	}
	s, err := badgerslot.Open(cfg.FallbackDir, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open fallback slot: %w", err)
	}
	log.Info("fallback slot opened", logger.String("dir", cfg.FallbackDir))
	return s, s, nil
}

// openTransport builds the strategy picked by the configuration. The slot
// backs remote and bridge as a read fallback, and is the store itself for local.
func openTransport(cfg *config.Config, slot gateway.Slot, log logger.Logger) (storage, error) {
	switch cfg.Transport {
	case config.TransportRemote:
		remote, err := gateway.NewRemote(gateway.RemoteOptions{
			URL:       cfg.EndpointURL,
			WriteOnly: cfg.EndpointWriteOnly,
			Timeout:   cfg.EndpointTimeout,
		}, log)
		if err != nil {
			return storage{}, err
		}
		log.Info("using remote transport", logger.Bool("write_only", cfg.EndpointWriteOnly))
		return storage{transport: remote, fallback: slot}, nil

	case config.TransportBridge:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.Connect(context.Background(), redis.OptionsFromConfig(cfg), log)
		if err != nil {
			return storage{}, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("Redis initialized successfully")

		store := redisstore.NewStore(client)
		if cfg.BridgeImport {
			n, err := scheduler.NewBridgeImporter(store, slot, log).Import(context.Background())
			if err != nil {
				log.Warn("failed to import fallback slot into bridge", logger.Error(err))
			} else if n > 0 {
				log.Info("fallback slot imported into bridge", logger.Int("count", n))
			}
		}
		bridge := gateway.NewBridge(store)
		return storage{transport: bridge, fallback: slot, bridge: bridge, redisClient: client}, nil

	default:
		log.Info("using local transport")
		return storage{transport: gateway.NewLocal(slot)}, nil
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Reelmark v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initial load runs in the background; /readyz answers 503 until it lands
	a.reloader.Start(ctx)
	a.logger.Info("collection reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval),
		logger.String("transport", a.cfg.Transport))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.reloader.Stop()
		a.closeStorage()
		return err
	}

	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.closeStorage()
	a.logger.Info("✅ Reelmark stopped cleanly")
	_ = a.logger.Sync()
	return nil
}

func (a *App) closeStorage() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}
	if a.slotCloser != nil {
		utils.MustClose(a.slotCloser)
	}
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/credentials"
	"server/internal/infra/geoip"
	"server/internal/middleware"
	"server/internal/providers/imagekit"
	"server/internal/providers/prompt"
	"server/internal/storage"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	sqlRunner := infra.NewSQLRunner(dbpool, logger)
	creds := credentials.NewStore(sqlRunner)

	// GeoIP is optional; without a database every lookup resolves to empty.
	var geo middleware.CountryLookup
	if cfg.GeoIPDBPath != "" {
		resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.GeoIPDBPath).Msg("geoip database unavailable")
		} else {
			defer resolver.Close()
			geo = resolver.CountryCode
		}
	}

	refiner := buildRefiner(ctx, cfg, creds, logger)
	renderer, staticDir := buildRenderer(ctx, cfg, creds, logger)

	app := handlers.NewApp(sqlRunner, logger, cfg, refiner, renderer)

	router := httpapi.NewRouter(app, geo, staticDir)

	server := infra.NewHTTPServer(cfg, router)

	// Sweep expired sessions in the background so the table does not grow
	// without bound.
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go sessionJanitor(janitorCtx, app, logger)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// buildRefiner prefers Gemini; the key comes from the environment first and
// the integration_tokens table second. Without a key the static refiner keeps
// local development working end to end.
func buildRefiner(ctx context.Context, cfg *infra.Config, creds *credentials.Store, logger infra.Logger) prompt.Refiner {
	apiKey := cfg.GeminiAPIKey
	if apiKey == "" {
		stored, err := creds.GeminiAPIKey(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load gemini key from store")
		}
		apiKey = stored
	}
	if apiKey == "" {
		logger.Warn().Msg("no gemini api key configured, using static prompt refiner")
		return prompt.NewStaticRefiner()
	}
	refiner, err := prompt.NewGeminiRefiner(prompt.GeminiOptions{
		APIKey:  apiKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build gemini refiner")
	}
	return refiner
}

// buildRenderer wires the ImageKit client. With a private key the rendered
// image is re-uploaded to ImageKit's media library; otherwise it lands on
// local disk and is served from /static. The second return value is the
// static directory to mount, empty when the upload API is in use.
func buildRenderer(ctx context.Context, cfg *infra.Config, creds *credentials.Store, logger infra.Logger) (imagekit.Renderer, string) {
	privateKey := cfg.ImageKitPrivateKey
	if privateKey == "" {
		stored, err := creds.ImageKitPrivateKey(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load imagekit key from store")
		}
		privateKey = stored
	}

	var uploader imagekit.Uploader
	staticDir := ""
	if privateKey != "" {
		api, err := imagekit.NewUploadAPI(imagekit.UploadAPIOptions{
			UploadURL:  cfg.ImageKitUploadURL,
			PrivateKey: privateKey,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build imagekit upload api")
		}
		uploader = api
	} else {
		logger.Warn().Msg("no imagekit private key configured, storing images on local disk")
		store, err := storage.NewFileStore(cfg.StoragePath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.StoragePath).Msg("failed to prepare local storage")
		}
		uploader = imagekit.NewFileUploader(store, cfg.StorageBaseURL)
		staticDir = cfg.StoragePath
	}

	renderer, err := imagekit.NewClient(imagekit.Options{
		URLEndpoint: cfg.ImageKitURLEndpoint,
		Uploader:    uploader,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build imagekit client")
	}
	return renderer, staticDir
}

func sessionJanitor(ctx context.Context, app *handlers.App, logger infra.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := app.Sessions.DeleteExpired(ctx); err != nil {
				logger.Error().Err(err).Msg("failed to sweep expired sessions")
			}
		}
	}
}

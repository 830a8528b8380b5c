package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mediagate/mediagate/internal/config"
	"github.com/mediagate/mediagate/internal/delivery"
	"github.com/mediagate/mediagate/internal/extractor"
	"github.com/mediagate/mediagate/internal/extractor/facebook"
	"github.com/mediagate/mediagate/internal/extractor/instagram"
	"github.com/mediagate/mediagate/internal/extractor/pixiv"
	"github.com/mediagate/mediagate/internal/extractor/tiktok"
	"github.com/mediagate/mediagate/internal/extractor/twitter"
	"github.com/mediagate/mediagate/internal/extractor/wrapper"
	internalhttpclient "github.com/mediagate/mediagate/internal/httpclient"
	"github.com/mediagate/mediagate/internal/httpserver"
	"github.com/mediagate/mediagate/internal/httpserver/handlers"
	"github.com/mediagate/mediagate/internal/observability"
	"github.com/mediagate/mediagate/internal/status"
	"github.com/mediagate/mediagate/internal/urlregistry"
	"github.com/mediagate/mediagate/internal/version"
	"github.com/mediagate/mediagate/pkg/httpclient"
)

var serveStart = time.Now()

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the mediagate server",
	Long: `Start the mediagate HTTP server and API.

The server provides:
- POST /extract to resolve a social media URL to normalized media sources
- /stream, /download, /thumbnail, /hls-proxy, /hls-stream, /merge delivery
  endpoints backed by the opaque URL registry
- GET /status and GET /health for liveness and capability reporting
- OpenAPI documentation at /docs`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Int("port", 8080, "Port to listen on")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if host := serveCmd.Flags().Lookup("host"); host.Changed {
		cfg.Server.Host = host.Value.String()
	}
	if port := serveCmd.Flags().Lookup("port"); port.Changed {
		cfg.Server.Port = viper.GetInt("server.port")
	}

	logger := observability.NewLogger(cfg.Logging)
	observability.SetDefault(logger)

	breakerManager := httpclient.NewCircuitBreakerManager(nil).WithLogger(logger)
	clientFactory := httpclient.NewClientFactory(breakerManager)
	clientRegistry := httpclient.NewRegistry()

	newFetcher := func(name string) *internalhttpclient.Client {
		return internalhttpclient.New(clientRegistry, clientFactory, name)
	}

	extractorRegistry := extractor.NewRegistry(cfg.Extractor.IsVercelProfile)
	extractorRegistry.Register(facebook.New(newFetcher("extractor.facebook"), cfg.Extractor.ServerCookie("facebook")))
	extractorRegistry.Register(instagram.New(newFetcher("extractor.instagram"), cfg.Extractor.ServerCookie("instagram")))
	extractorRegistry.Register(tiktok.New(newFetcher("extractor.tiktok"), cfg.Extractor.TikTokHelperAPI))
	extractorRegistry.Register(twitter.New(newFetcher("extractor.twitter"), cfg.Extractor.ServerCookie("twitter")))
	extractorRegistry.Register(pixiv.New(newFetcher("extractor.pixiv")))

	wrapperHTTPClient := &http.Client{Timeout: 30 * time.Second}
	wrapperFetcher := wrapper.NewHTTPFetcher(wrapperHTTPClient, 30*time.Second)
	wrapperAPIURL := wrapper.ResolveAPIURL(cfg.Extractor.PythonAPIURL, "")
	extractorRegistry.SetWrapper(wrapper.New(wrapperFetcher, wrapperAPIURL))

	urlRegistry := urlregistry.New(cfg.Registry.TTL)
	sweepSchedule := "@every " + cfg.Registry.SweepInterval.String()
	sweeper := urlregistry.NewSweeper(urlRegistry, sweepSchedule, logger)
	if err := sweeper.Start(sweepSchedule); err != nil {
		logger.Warn("failed to start URL registry sweeper", slog.String("error", err.Error()))
	}
	defer sweeper.Stop()

	deliveryClient := newFetcher("delivery")
	deliveryHandler := delivery.NewHandler(
		deliveryClient,
		urlRegistry,
		logger,
		cfg.Delivery.MuxerBinary,
		cfg.Delivery.MuxerMaxDuration,
	)

	extractHandler := handlers.NewExtractHandler(extractorRegistry, deliveryClient, urlRegistry)
	statusHandler := status.NewHandler(extractorRegistry, serveStart)
	docsHandler := handlers.NewDocsHandler("mediagate API", "/openapi.yaml", handlers.WithSystemTheme())
	changelogHandler := handlers.NewChangelogHandler()

	serverConfig := httpserver.DefaultServerConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	serverConfig.ReadTimeout = cfg.Server.ReadTimeout
	serverConfig.WriteTimeout = cfg.Server.WriteTimeout
	serverConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	serverConfig.RateLimit.Enabled = cfg.Gateway.RateLimitEnabled
	serverConfig.RateLimit.Max = cfg.Gateway.RateLimitMax
	serverConfig.RateLimit.Window = cfg.Gateway.RateLimitWindow
	serverConfig.AccessControl.APIKeys = cfg.Gateway.APIKeys
	serverConfig.AccessControl.AllowedOrigins = cfg.Gateway.AllowedOrigins

	server := httpserver.NewServer(serverConfig, logger, version.Version)
	server.Mount(httpserver.Routes{
		Extract:         extractHandler,
		Delivery:        deliveryHandler,
		Status:          statusHandler,
		CircuitBreakers: breakerManager,
		Docs:            docsHandler,
		Changelog:       changelogHandler,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		cancel()
	}()

	logger.Info("starting mediagate server",
		slog.String("host", serverConfig.Host),
		slog.Int("port", serverConfig.Port),
		slog.String("version", version.Version),
		slog.String("profile", cfg.Extractor.Profile),
	)

	return server.ListenAndServe(ctx)
}

package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go/v7"

	"github.com/Lead-Studios/veritix-backend-sub009/config"
	"github.com/Lead-Studios/veritix-backend-sub009/handlers"
	"github.com/Lead-Studios/veritix-backend-sub009/internal/services"
	"github.com/Lead-Studios/veritix-backend-sub009/internal/services/chain"
	"github.com/Lead-Studios/veritix-backend-sub009/internal/services/chain/polygon"
	"github.com/Lead-Studios/veritix-backend-sub009/internal/services/chain/zora"
	"github.com/Lead-Studios/veritix-backend-sub009/internal/store/sqlite"
	"github.com/Lead-Studios/veritix-backend-sub009/security"
	"github.com/Lead-Studios/veritix-backend-sub009/utils"

	_ "github.com/Lead-Studios/veritix-backend-sub009/migrations"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	// Initialize PubNub
	pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId("veritix-nft-engine"))
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize chain adapters
	registry, err := buildRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		cctx, ccancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer ccancel()
		if err := registry.Close(cctx); err != nil {
			slog.Error("close chain adapters", "error", err)
		}
	}()

	var notifier services.Notifier = services.NoopNotifier{}
	if cfg.PubNubPublishKey != "" {
		notifier = services.NewPubNubNotifier(pubnub.NewPubNub(pnConfig))
	}

	var locker services.TicketLocker = utils.NewMemoryTicketLock()
	if err := utils.RedisHealthCheck(redisClient); err == nil {
		locker = utils.NewRedisTicketLock(redisClient, cfg.TicketLockTTL)
	} else {
		slog.Warn("redis unavailable, falling back to in-process ticket locks", "error", err)
	}

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Expose Prometheus metrics on a side port.
	if cfg.EnableMetrics {
		go serveMetrics(cfg.MetricsPort)
	}

	// Setup graceful shutdown
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// The stores need the bootstrapped database.
		ticketStore := sqlite.NewTicketStore(app.DB())
		configStore := sqlite.NewConfigStore(app.DB())
		eventStore := sqlite.NewEventStore(app.DB())

		configService := services.NewConfigService(configStore, eventStore)
		lifecycleService := services.NewLifecycleService(
			ticketStore,
			eventStore,
			configService,
			registry,
			locker,
			notifier,
			services.WithAdapterTimeout(cfg.AdapterTimeout),
		)

		nftHandler := handlers.NewNFTHandler(app, lifecycleService)
		configHandler := handlers.NewConfigHandler(app, configService)
		rateLimiter := security.NewRateLimiter(redisClient)

		// NFT lifecycle endpoints
		e.Router.POST("/api/v1/nft/mint", nftHandler.MintTicket).BindFunc(rateLimiter.MintRateLimit)
		e.Router.GET("/api/v1/nft/{ticketId}", nftHandler.GetTicket)
		e.Router.POST("/api/v1/nft/{ticketId}/retry", nftHandler.RetryMinting)
		e.Router.POST("/api/v1/nft/{ticketId}/transfer", nftHandler.TransferTicket)
		e.Router.POST("/api/v1/nft/{ticketId}/burn", nftHandler.BurnTicket)

		// Event-scoped endpoints
		e.Router.GET("/api/v1/events/{eventId}/nfts", nftHandler.GetEventNFTs)
		e.Router.GET("/api/v1/events/{eventId}/minting-stats", nftHandler.GetMintingStats)
		e.Router.GET("/api/v1/events/{eventId}/mint-fee", nftHandler.EstimateMintFee)
		e.Router.GET("/api/v1/events/{eventId}/minting-config", configHandler.GetMintingConfig)
		e.Router.PATCH("/api/v1/events/{eventId}/minting-config", configHandler.UpdateMintingConfig)

		// Purchaser endpoints
		e.Router.GET("/api/v1/purchasers/{purchaserId}/nfts", nftHandler.GetPurchaserNFTs)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "degraded",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

// buildRegistry creates and registers an adapter per configured gateway.
func buildRegistry(ctx context.Context, cfg *config.Config) (*chain.Registry, error) {
	registry := chain.NewRegistry(chain.NewFactory())

	if cfg.PolygonConfig.BaseURL != "" {
		err := registry.Register(ctx, chain.PlatformPolygon, &polygon.Config{
			BaseURL: cfg.PolygonConfig.BaseURL,
			APIKey:  cfg.PolygonConfig.APIKey,
			ChainID: int64(cfg.PolygonConfig.ChainID),
			Timeout: cfg.PolygonConfig.Timeout,
		})
		if err != nil {
			return nil, err
		}
	}

	if cfg.ZoraConfig.BaseURL != "" {
		err := registry.Register(ctx, chain.PlatformZora, &zora.Config{
			BaseURL:     cfg.ZoraConfig.BaseURL,
			BearerToken: cfg.ZoraConfig.Token,
			Timeout:     cfg.ZoraConfig.Timeout,
		})
		if err != nil {
			return nil, err
		}
	}

	primary := chain.Platform(cfg.DefaultPlatform)
	if err := registry.SetPrimary(primary); err != nil {
		slog.Warn("default platform has no configured gateway", "platform", primary, "error", err)
	}

	return registry, nil
}

func serveMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	if err := http.ListenAndServe(":"+port, mux); err != nil {
		slog.Error("metrics server stopped", "error", err)
	}
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}

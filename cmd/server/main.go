package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	ucp "github.com/Redemptive-Software/woocommerce-ucp"
	ucpecho "github.com/Redemptive-Software/woocommerce-ucp/api/echo"
	"github.com/Redemptive-Software/woocommerce-ucp/cache"
	redisstore "github.com/Redemptive-Software/woocommerce-ucp/cache/redis"
	"github.com/Redemptive-Software/woocommerce-ucp/config"
	"github.com/Redemptive-Software/woocommerce-ucp/internal/auth"
	"github.com/Redemptive-Software/woocommerce-ucp/internal/server"
	"github.com/Redemptive-Software/woocommerce-ucp/mongodb"
	"github.com/Redemptive-Software/woocommerce-ucp/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logLevel, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Info().
		Str("http_port", cfg.HTTPPort).
		Str("base_url", cfg.BaseURL).
		Str("store_backend", cfg.StoreBackend).
		Msg("Starting UCP bridge server")

	ctx := context.Background()

	tp, err := tracing.InitTracerProvider("ucp-bridge")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tracer provider")
	}

	// Expiring key-value store for codes, tokens and sessions.
	var store cache.Store
	switch cfg.StoreBackend {
	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
		}
		store = redisstore.NewStore(client, cfg.RedisPrefix)
	default:
		memStore := cache.NewMemoryStore()
		defer memStore.Close()
		store = memStore
	}

	// Catalog and cart collaborators.
	mongoClient, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize MongoDB connection")
	}
	db := mongoClient.Database(cfg.MongoDBName)
	catalog := mongodb.NewProductRepository(db)
	cart := mongodb.NewCartRepository(db)

	// Core services.
	authServer := ucp.NewAuthServer(store,
		time.Duration(cfg.AuthCodeTTLMin)*time.Minute,
		time.Duration(cfg.AccessTokenTTLHour)*time.Hour)
	broker := ucp.NewCheckoutBroker(store, cart,
		cfg.BaseURL+"/checkout",
		time.Duration(cfg.SessionTTLHour)*time.Hour)
	discovery := ucp.NewDiscovery(cfg.BaseURL)
	principal := auth.NewHeaderPrincipal("", cfg.LoginURL)

	ucpAPI := ucpecho.NewUCPAPI(authServer, broker, catalog, discovery, principal, cfg.CheckoutURL)

	httpServer := server.NewHTTPServer(cfg, ucpAPI)
	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error closing MongoDB connection")
	}

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down tracer provider")
	}

	log.Info().Msg("Server gracefully stopped")
}

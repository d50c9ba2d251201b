package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	checkoutagent "github.com/kittipatv/checkout-agent/agent/agents/checkout"
	contractx "github.com/kittipatv/checkout-agent/agent/contract"
	llmx "github.com/kittipatv/checkout-agent/agent/llm"
	statex "github.com/kittipatv/checkout-agent/agent/state"
	toolx "github.com/kittipatv/checkout-agent/agent/tool"
	configx "github.com/kittipatv/checkout-agent/pkg/config"
	_ "github.com/kittipatv/checkout-agent/pkg/logger/autoload"
	omisex "github.com/kittipatv/checkout-agent/pkg/omise"
	openrouterx "github.com/kittipatv/checkout-agent/pkg/openrouter"
	shopifyx "github.com/kittipatv/checkout-agent/pkg/platforms/shopify"
	wixx "github.com/kittipatv/checkout-agent/pkg/platforms/wix"
	woocommercex "github.com/kittipatv/checkout-agent/pkg/platforms/woocommerce"
	qstashx "github.com/kittipatv/checkout-agent/pkg/qstash"
	"github.com/kittipatv/checkout-agent/profile"
	"github.com/kittipatv/checkout-agent/server"
)

type AppConfig struct {
	Port         int    `envconfig:"PORT" default:"8080"`
	SessionStore string `envconfig:"SESSION_STORE" default:"memory"`
	Platform     string `envconfig:"PLATFORM" default:"none"`
	ProfileDSN   string `envconfig:"PROFILE_DSN"`
	Events       string `envconfig:"EVENTS" default:"none"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")
	ctx := context.Background()

	store, storeCheck := buildSessionStore(appCfg)
	registry, err := statex.NewRegistry(store)
	if err != nil {
		log.Fatal().Err(err).Msg("build session registry")
	}

	omiseCfg := configx.MustNew[omisex.Config]("OMISE")
	gateway, err := omisex.NewClient(*omiseCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build payment gateway")
	}

	platform := buildPlatform(appCfg.Platform)
	profiles, profileCheck := buildProfileStore(ctx, appCfg.ProfileDSN)
	events := buildEvents(appCfg.Events)

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid model configuration")
	}
	openRouterCfg := llmCfg.OpenRouter()
	chatModel, err := openRouterCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("build chat model")
	}

	executor, err := toolx.NewExecutor(toolx.Deps{Gateway: gateway, Platform: platform, Profile: profiles})
	if err != nil {
		log.Fatal().Err(err).Msg("build tool executor")
	}

	service, err := checkoutagent.New(registry, chatModel, executor, events)
	if err != nil {
		log.Fatal().Err(err).Msg("build checkout service")
	}

	srv, err := server.New(server.Deps{
		Registry: registry,
		Chat:     service,
		Gateway:  gateway,
		Profiles: profiles,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build http server")
	}

	srv.RegisterCheck("payment_gateway", func(ctx context.Context) error {
		_, err := gateway.Capabilities(ctx)
		return err
	})
	if storeCheck != nil {
		srv.RegisterCheck("session_store", storeCheck)
	}
	if profileCheck != nil {
		srv.RegisterCheck("profile_store", profileCheck)
	}
	if openRouterClient := openrouterx.NewClient(openRouterCfg); openRouterClient != nil {
		srv.RegisterCheck("model", func(ctx context.Context) error {
			_, err := openRouterClient.Models.List(ctx)
			return err
		})
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", appCfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", appCfg.Port).Str("platform", appCfg.Platform).Msg("checkout agent listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("checkout agent stopped")
}

func buildSessionStore(cfg *AppConfig) (statex.Store, server.CheckFunc) {
	switch strings.ToLower(strings.TrimSpace(cfg.SessionStore)) {
	case "upstash":
		redisCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		store, err := statex.NewUpstashRedisStore(*redisCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("build upstash session store")
		}
		return store, store.Ping
	case "", "memory":
		return statex.NewMemoryStore(), nil
	default:
		log.Fatal().Str("session_store", cfg.SessionStore).Msg("unknown session store backend")
		return nil, nil
	}
}

func buildPlatform(name string) contractx.Platform {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return nil
	case "shopify":
		cfg := configx.MustNew[shopifyx.Config]("SHOPIFY")
		client, err := shopifyx.NewClient(*cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("build shopify client")
		}
		return client
	case "woocommerce":
		cfg := configx.MustNew[woocommercex.Config]("WOOCOMMERCE")
		client, err := woocommercex.NewClient(*cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("build woocommerce client")
		}
		return client
	case "wix":
		cfg := configx.MustNew[wixx.Config]("WIX")
		client, err := wixx.NewClient(*cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("build wix client")
		}
		return client
	default:
		log.Fatal().Str("platform", name).Msg("unknown commerce platform")
		return nil
	}
}

func buildProfileStore(ctx context.Context, dsn string) (contractx.ProfileStore, server.CheckFunc) {
	if strings.TrimSpace(dsn) == "" {
		return profile.NewMemoryStore(), nil
	}

	store, err := profile.NewPostgresStore(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("build postgres profile store")
	}
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("bootstrap profile schema")
	}
	return store, store.Ping
}

func buildEvents(mode string) contractx.Events {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "qstash":
		cfg := configx.MustNew[qstashx.Config]("QSTASH")
		return qstashx.MustNew(*cfg)
	case "", "none":
		return nil
	default:
		log.Fatal().Str("events", mode).Msg("unknown events backend")
		return nil
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dailyitems/internal/adapter/repo"
	"dailyitems/internal/domain"
	"dailyitems/internal/generation"
	apihttp "dailyitems/internal/http"
	"dailyitems/internal/http/handlers"
	"dailyitems/internal/infra"
	"dailyitems/internal/maintenance"
	"dailyitems/internal/providers/chat"
	"dailyitems/internal/ratelimit"
)

func main() {
	// .env is optional
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

	redisClient, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, whitelist cache disabled")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	jobs := repo.NewJobRepository(dbpool)
	comments := repo.NewCommentRepository(dbpool)
	counters := repo.NewRateCounterRepository(dbpool)

	var whitelist domain.WhitelistRepository = repo.NewWhitelistRepository(dbpool)
	if redisClient != nil {
		whitelist = repo.NewCachedWhitelistRepository(whitelist, redisClient, logger)
	}

	policies, err := ratelimit.LoadPolicies(cfg.RateLimitPolicyFile)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.RateLimitPolicyFile).Msg("failed to load rate limit policies")
	}
	limiter := ratelimit.NewLimiter(counters, policies, logger)

	providers := chat.NewRegistry()
	if cfg.ChatProvider == "gemini" {
		registerGemini(providers, cfg)
		registerOpenAI(providers, cfg)
	} else {
		registerOpenAI(providers, cfg)
		registerGemini(providers, cfg)
	}

	orchestrator := generation.NewOrchestrator(jobs, providers, generation.Options{
		ProviderName: cfg.ChatProvider,
		Temperature:  cfg.GenTemperature,
		MaxTokens:    cfg.GenMaxTokens,
	}, logger)

	app := handlers.NewApp(logger, jobs, comments, whitelist, limiter, orchestrator)
	router := apihttp.NewRouter(app, cfg.AdminToken, logger)
	server := infra.NewHTTPServer(cfg, router)

	sweeper := maintenance.NewSweeper(jobs, counters, time.Duration(cfg.JobRetentionDays)*24*time.Hour, logger)
	if err := sweeper.Start(cfg.SweepSchedule); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.SweepSchedule).Msg("failed to start sweeper")
	}
	defer sweeper.Stop()

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
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

func registerOpenAI(reg *chat.Registry, cfg *infra.Config) {
	reg.Register(chat.NewOpenAIProvider(chat.OpenAIOptions{
		APIKey:       cfg.OpenAIAPIKey,
		AdminModel:   cfg.OpenAIAdminModel,
		PublicModel:  cfg.OpenAIPublicModel,
		Model:        cfg.OpenAIModel,
		BaseURL:      cfg.OpenAIBaseURL,
		Organization: cfg.OpenAIOrg,
	}))
}

func registerGemini(reg *chat.Registry, cfg *infra.Config) {
	reg.Register(chat.NewGeminiProvider(chat.GeminiOptions{
		APIKey:      cfg.GeminiAPIKey,
		AdminModel:  cfg.GeminiAdminModel,
		PublicModel: cfg.GeminiPublicModel,
		Model:       cfg.GeminiModel,
		BaseURL:     cfg.GeminiBaseURL,
	}))
}

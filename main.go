package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aiquery-dev/aiquery-engine/pkg/adapters/datasource"
	_ "github.com/aiquery-dev/aiquery-engine/pkg/adapters/datasource/mssql"
	_ "github.com/aiquery-dev/aiquery-engine/pkg/adapters/datasource/postgres"
	"github.com/aiquery-dev/aiquery-engine/pkg/audit"
	"github.com/aiquery-dev/aiquery-engine/pkg/cache"
	"github.com/aiquery-dev/aiquery-engine/pkg/config"
	"github.com/aiquery-dev/aiquery-engine/pkg/feedback"
	"github.com/aiquery-dev/aiquery-engine/pkg/generator"
	"github.com/aiquery-dev/aiquery-engine/pkg/handlers"
	"github.com/aiquery-dev/aiquery-engine/pkg/intent"
	"github.com/aiquery-dev/aiquery-engine/pkg/llm"
	"github.com/aiquery-dev/aiquery-engine/pkg/logging"
	"github.com/aiquery-dev/aiquery-engine/pkg/memory"
	"github.com/aiquery-dev/aiquery-engine/pkg/middleware"
	"github.com/aiquery-dev/aiquery-engine/pkg/models"
	"github.com/aiquery-dev/aiquery-engine/pkg/pipeline"
	"github.com/aiquery-dev/aiquery-engine/pkg/prompts"
	"github.com/aiquery-dev/aiquery-engine/pkg/ratelimit"
	"github.com/aiquery-dev/aiquery-engine/pkg/semantic"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("database_type", cfg.Database.Type),
		zap.String("llm_model", cfg.LLM.Model),
		zap.Bool("llm_fallback", cfg.LLM.FallbackAvailable()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resultCache, err := buildCache(cfg)
	if err != nil {
		logger.Fatal("cache init failed", zap.Error(err))
	}

	connector, err := buildConnector(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("datasource init failed",
			zap.String("type", cfg.Database.Type),
			zap.Error(err))
	}
	defer func() { _ = connector.Close() }()

	// Schema introspection is best-effort: generation still works without
	// it, just with weaker grounding.
	schema, err := connector.SchemaDescription(ctx)
	if err != nil {
		logger.Warn("schema introspection failed", zap.Error(err))
		schema = ""
	}

	gateway, err := buildGateway(cfg, logger)
	if err != nil {
		logger.Fatal("llm init failed", zap.Error(err))
	}

	layer, err := semantic.NewLayerFromFile(cfg.Semantic.MappingsPath)
	if err != nil {
		logger.Fatal("semantic layer init failed", zap.Error(err))
	}

	library, err := generator.LoadReportLibrary(cfg.Reports.TemplatesPath)
	if err != nil {
		logger.Fatal("report templates init failed", zap.Error(err))
	}

	feedbackSvc := feedback.NewService(cfg.Feedback.StoragePath, logger)

	modelGen := generator.NewModelGenerator(gateway, layer, schema, connector.Dialect(), logger,
		generator.WithExampleSource(func() []prompts.FewShotExample {
			learned := feedbackSvc.HighRatedExamples(4, 3)
			examples := make([]prompts.FewShotExample, len(learned))
			for i, ex := range learned {
				examples[i] = prompts.FewShotExample{Question: ex.Question, SQL: ex.SQL}
			}
			return examples
		}),
		generator.WithCorrectionSource(feedbackSvc.Correction))
	router := generator.NewRouter(
		modelGen,
		generator.NewReportGenerator(library, modelGen, logger),
		generator.NewInsightGenerator(logger),
	)

	store := memory.NewStore(cfg.Memory.MaxTurns)
	limiter := ratelimit.NewLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.PerHour)
	classifier := intent.NewClassifier(gateway, logger)

	auditor := audit.NewSecurityAuditor(logger)

	orchestrator := pipeline.NewOrchestrator(
		resultCache,
		store,
		classifier,
		router,
		connector,
		logger,
		pipeline.WithLimiter(limiter),
		pipeline.WithFeedback(feedbackSvc),
		pipeline.WithAuditor(auditor),
		pipeline.WithExecutionTimeout(time.Duration(cfg.Database.ExecTimeoutSeconds)*time.Second),
	)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewQueryHandler(orchestrator, store, resultCache, feedbackSvc, auditor, logger).RegisterRoutes(mux)
	handlers.NewFeedbackHandler(feedbackSvc, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting aiquery-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", zap.Error(err))
	}
}

// buildConnector connects to the configured database. With no host
// configured the engine runs in demo mode against a canned dataset, so it
// can be tried end to end without standing up a database.
func buildConnector(ctx context.Context, cfg *config.Config, logger *zap.Logger) (datasource.Connector, error) {
	if cfg.Database.Host == "" {
		logger.Warn("no database host configured, running in demo mode")
		demo := datasource.NewMockConnector(&models.ExecutionResult{
			Columns:  []string{"id", "name", "city"},
			Rows:     [][]any{{1, "Nguyen Van A", "Hanoi"}, {2, "Tran Thi B", "Ho Chi Minh"}, {3, "Le Van C", "Da Nang"}},
			RowCount: 3,
		})
		demo.Schema = "Table customers:\n  - id (integer)\n  - name (text)\n  - city (text)"
		return demo, nil
	}

	return datasource.New(ctx, cfg.Database.Type, &datasource.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		SSLMode:  cfg.Database.SSLMode,
	})
}

func buildCache(cfg *config.Config) (cache.ResultCache, error) {
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	if cfg.Cache.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		return cache.NewRedisCache(client, ttl)
	}
	return cache.NewMemoryCache(cfg.Cache.MaxEntries, ttl), nil
}

func buildGateway(cfg *config.Config, logger *zap.Logger) (*llm.Gateway, error) {
	primary, err := llm.NewOpenAIClient(&llm.Config{
		Endpoint: cfg.LLM.Endpoint,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
	}, logger)
	if err != nil {
		return nil, err
	}

	opts := []llm.GatewayOption{
		llm.WithTimeout(time.Duration(cfg.LLM.TimeoutSeconds) * time.Second),
	}
	if cfg.LLM.FallbackAvailable() {
		opts = append(opts, llm.WithFallback(
			llm.NewAnthropicClient(cfg.LLM.FallbackAPIKey, cfg.LLM.FallbackModel, logger)))
	}
	return llm.NewGateway(primary, logger, opts...), nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/greenledger/greenledger-api/internal/handler"
	"github.com/greenledger/greenledger-api/internal/middleware"
	"github.com/greenledger/greenledger-api/internal/models"
	"github.com/greenledger/greenledger-api/internal/repository"
	"github.com/greenledger/greenledger-api/internal/seed"
	"github.com/greenledger/greenledger-api/internal/service"
	"github.com/greenledger/greenledger-api/pkg/cache"
	"github.com/greenledger/greenledger-api/pkg/config"
	"github.com/greenledger/greenledger-api/pkg/database"
	"github.com/greenledger/greenledger-api/pkg/jobs"
	"github.com/greenledger/greenledger-api/pkg/logger"
	corsmiddleware "github.com/greenledger/greenledger-api/pkg/middleware/cors"
	reqidmiddleware "github.com/greenledger/greenledger-api/pkg/middleware/requestid"
)

func main() {
	seedData := flag.Bool("seed", false, "load the canonical taxonomy and factor dataset, then exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	taxonomyRepo := repository.NewTaxonomyRepository(db)
	factorRepo := repository.NewFactorRepository(db)
	emissionRepo := repository.NewEmissionRepository(db)
	organizationRepo := repository.NewOrganizationRepository(db)

	if *seedData {
		if err := seed.Run(context.Background(), taxonomyRepo, factorRepo, organizationRepo, logr); err != nil {
			logr.Sugar().Fatalw("seeding failed", "error", err)
		}
		return
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
	}

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)

	taxonomySvc := service.NewTaxonomyService(taxonomyRepo, cacheSvc, logr)
	factorSvc := service.NewFactorService(factorRepo, metricsSvc, logr)
	emissionSvc := service.NewEmissionService(
		emissionRepo,
		organizationRepo,
		taxonomySvc,
		factorSvc,
		service.DefaultRuleSet(),
		validator.New(),
		metricsSvc,
		logr,
		cfg.Calculation.Version,
		cfg.Calculation.RejectAnomalies,
	)

	importQueue := jobs.NewQueue(handler.ImportJobType, func(ctx context.Context, job jobs.Job) error {
		drafts, ok := job.Payload.([]models.EmissionDraft)
		if !ok {
			return fmt.Errorf("unexpected payload type %T for job %s", job.Payload, job.ID)
		}
		created, failures, err := emissionSvc.ComputeBatch(ctx, drafts)
		if err != nil {
			return err
		}
		logr.Sugar().Infow("import job finished", "job_id", job.ID, "created", len(created), "rejected", len(failures))
		return nil
	}, jobs.QueueConfig{
		Workers:    cfg.Import.Workers,
		BufferSize: cfg.Import.BufferSize,
		MaxRetries: cfg.Import.MaxRetries,
		RetryDelay: cfg.Import.RetryDelay,
		Logger:     logr,
	})
	importQueue.Start(context.Background())
	defer importQueue.Stop()

	healthHandler := handler.NewHealthHandler(db, redisClient)
	taxonomyHandler := handler.NewTaxonomyHandler(taxonomySvc)
	factorHandler := handler.NewFactorHandler(factorSvc)
	emissionHandler := handler.NewEmissionHandler(emissionSvc, importQueue)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)

	taxonomy := api.Group("/taxonomy")
	taxonomy.GET("/roots", taxonomyHandler.Roots)
	taxonomy.GET("/:code", taxonomyHandler.Get)
	taxonomy.GET("/:code/children", taxonomyHandler.Children)
	taxonomy.GET("/:code/descendants", taxonomyHandler.Descendants)
	taxonomy.GET("/:code/path", taxonomyHandler.Path)

	api.GET("/factors/resolve", factorHandler.Resolve)

	emissions := api.Group("/emissions")
	emissions.POST("", emissionHandler.Create)
	emissions.POST("/bulk", emissionHandler.CreateBulk)
	emissions.POST("/import", emissionHandler.Import)
	emissions.GET("", emissionHandler.List)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

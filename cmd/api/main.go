package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"talentmatch/resume-engine/internal/cache"
	"talentmatch/resume-engine/internal/config"
	"talentmatch/resume-engine/internal/extraction"
	"talentmatch/resume-engine/internal/handlers"
	"talentmatch/resume-engine/internal/logger"
	"talentmatch/resume-engine/internal/matching"
	"talentmatch/resume-engine/internal/repositories"
	"talentmatch/resume-engine/internal/services"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}

	docRepo := repositories.NewDocumentRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	matchRepo := repositories.NewMatchRepository(db)

	storageService := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatal("failed to create upload directory", zap.Error(err))
	}

	resultCache := cache.New(cfg.Redis.URL, log)

	geminiService, err := services.NewGeminiService(cfg.Gemini, resultCache, cfg.Matching.EmbeddingTTL, log)
	if err != nil {
		log.Fatal("failed to initialize gemini client", zap.Error(err))
	}

	vectorIndex, err := services.NewVectorIndexService(cfg.Qdrant, log)
	if err != nil {
		log.Fatal("failed to initialize qdrant client", zap.Error(err))
	}
	if err := vectorIndex.InitCollection(); err != nil {
		log.Fatal("failed to initialize qdrant collection", zap.Error(err))
	}

	// Extraction chain, highest fidelity first.
	orchestrator := extraction.NewOrchestrator([]extraction.Adapter{
		extraction.NewVisionAdapter(geminiService),
		extraction.NewLayoutAdapter(geminiService),
		extraction.NewSectionsAdapter(),
		extraction.NewRulesAdapter(),
	}, geminiService, cfg.Extraction, log)

	processor := services.NewTaskProcessor(
		taskRepo, docRepo, profileRepo,
		storageService, orchestrator, resultCache,
		geminiService, vectorIndex,
		cfg.Worker, log,
	)
	worker := services.NewWorker(taskRepo, processor, cfg.Worker, log)
	worker.Start(context.Background())

	normalizer := matching.NewSkillNormalizer(cfg.Matching.SkillSynonyms)
	engine := matching.NewEngine(normalizer, geminiService, cfg.Matching.QualityGateThreshold, log)
	explainer := matching.NewExplanationGenerator(geminiService, log)
	matcher := services.NewMatcherService(
		profileRepo, jobRepo, matchRepo,
		engine, explainer,
		geminiService, vectorIndex, resultCache,
		cfg.Matching, log,
	)

	uploadHandler := handlers.NewUploadHandler(docRepo, storageService)
	extractionHandler := handlers.NewExtractionHandler(taskRepo, docRepo, profileRepo, worker)
	jobHandler := handlers.NewJobHandler(jobRepo)
	matchHandler := handlers.NewMatchHandler(matcher)

	app := fiber.New(fiber.Config{
		AppName:      "Resume Matching Engine",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "time": time.Now()})
	})

	api.Post("/upload", uploadHandler.HandleUpload)
	api.Post("/extractions", extractionHandler.HandleSubmit)
	api.Get("/tasks/:id", extractionHandler.HandleGetTask)
	api.Post("/documents/:id/reprocess", extractionHandler.HandleReprocess)
	api.Get("/profiles/:id", extractionHandler.HandleGetProfile)

	api.Post("/jobs", jobHandler.HandleCreate)
	api.Get("/jobs", jobHandler.HandleList)
	api.Get("/jobs/:id", jobHandler.HandleGet)
	api.Put("/jobs/:id", jobHandler.HandleUpdate)

	api.Post("/matches", matchHandler.HandleCompute)
	api.Post("/jobs/:id/matches/bulk", matchHandler.HandleBulk)
	api.Get("/jobs/:id/rankings", matchHandler.HandleRankings)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info("shutting down")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Error("forced shutdown", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Server.Port
	log.Info("server starting", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

package config

import (
	"FreshMart-Backend/internal/api/handlers"
	"FreshMart-Backend/internal/api/routes"
	"FreshMart-Backend/internal/middleware"
	"FreshMart-Backend/internal/scheduler"
	"FreshMart-Backend/internal/utils"
	"FreshMart-Backend/internal/utils/storage"
	"FreshMart-Backend/pkg/broadcast"
	"FreshMart-Backend/pkg/freshness"
	"FreshMart-Backend/pkg/logger"
	"FreshMart-Backend/pkg/pricing"
	"FreshMart-Backend/pkg/product"
	"FreshMart-Backend/pkg/trends"
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

type optimizerJob struct {
	optimizer pricing.Optimizer
}

func (j *optimizerJob) Name() string { return "pricing-optimizer" }

func (j *optimizerJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	_, err := j.optimizer.Run(ctx)
	return err
}

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(fiberlogger.New(fiberlogger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	appLog := logger.New(logger.Config{Level: utils.GetConfig("LOG_LEVEL")})
	s3 := storage.NewAwsS3()
	hub := broadcast.NewHub(appLog)

	// Repository
	productRepository := product.NewProductRepository(db)
	historyRepository := freshness.NewHistoryRepository(db)

	// Service
	productService := product.NewProductService(productRepository, s3)
	estimator := freshness.NewEstimator()
	statsProvider := freshness.NewImageStatsProvider()
	freshnessService := freshness.NewFreshnessService(
		historyRepository,
		productRepository,
		statsProvider,
		estimator,
		hub,
		s3,
		appLog,
	)
	optimizer := pricing.NewOptimizer(productRepository, hub, appLog)
	trendService := trends.NewTrendService(productRepository, historyRepository)

	// Handler
	productHandler := handlers.NewProductHandler(productService, optimizer, validator)
	freshnessHandler := handlers.NewFreshnessHandler(freshnessService, trendService, hub, validator)

	// Scheduled re-pricing, disabled when no schedule is configured
	if schedule := utils.GetConfig("OPTIMIZER_SCHEDULE"); schedule != "" {
		jobs := scheduler.New(appLog)
		if err := jobs.AddJob(schedule, &optimizerJob{optimizer: optimizer}); err != nil {
			return nil, err
		}
		jobs.Start()
	}

	// routes
	routesConfig := routes.Config{
		App:              app,
		ProductHandler:   productHandler,
		FreshnessHandler: freshnessHandler,
		Middleware:       middlewares,
	}
	routesConfig.Setup()
	return app, nil
}

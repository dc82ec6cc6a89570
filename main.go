package main

import (
	"context"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"psimodal/adapters/excel"
	"psimodal/adapters/postgres"
	"psimodal/adapters/rng"
	"psimodal/api"
	"psimodal/app"
	"psimodal/internal/config"
	"psimodal/internal/testkit"
	"psimodal/ports"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Printf("Configuration loading failed: %v", err)
		os.Exit(1)
	}

	runRepo, err := initRunRepository(appConfig)
	if err != nil {
		log.Printf("Repository initialization failed: %v", err)
		os.Exit(1)
	}

	service := app.NewModalityService(runRepo, rng.NewAdapter())

	// Optional startup estimation of a configured PSI file
	if appConfig.Data.PSIFile != "" {
		warmup(service, appConfig)
	}

	server := api.NewApp(api.Config{Port: appConfig.Server.Port}, service)
	if err := server.Start(); err != nil {
		log.Printf("Server failed: %v", err)
		os.Exit(1)
	}
}

// initRunRepository connects to PostgreSQL when DATABASE_URL is set and
// falls back to the in-memory repository otherwise
func initRunRepository(appConfig *config.Config) (ports.RunRepository, error) {
	if appConfig.Database.URL == "" {
		log.Println("No DATABASE_URL configured, using in-memory run repository")
		return testkit.NewInMemoryRunRepository(), nil
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		return nil, err
	}

	log.Println("Connected to PostgreSQL run repository")
	return postgres.NewRunRepository(db), nil
}

// warmup estimates the configured PSI file once at startup so the first
// API request for it hits the cache
func warmup(service *app.ModalityService, appConfig *config.Config) {
	log.Printf("Using PSI data source: %s", appConfig.Data.PSIFile)

	m, err := excel.NewMatrixReader(appConfig.Data.PSIFile).ReadMatrix()
	if err != nil {
		log.Printf("Failed to read PSI file, skipping warmup: %v", err)
		return
	}

	req := app.DefaultEstimateRequest(m)
	req.ExcludedMax = appConfig.Estimator.ExcludedMax
	req.IncludedMin = appConfig.Estimator.IncludedMin

	rec, err := service.Estimate(context.Background(), req)
	if err != nil {
		log.Printf("Startup estimation failed: %v", err)
		return
	}
	log.Printf("Startup estimation complete: run %s, %d events", rec.ID, rec.NumEvents)
}

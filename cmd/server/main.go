package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/kasicredit/lending-engine/internal/config"
	"github.com/kasicredit/lending-engine/internal/domain"
	"github.com/kasicredit/lending-engine/internal/handler"
	"github.com/kasicredit/lending-engine/internal/repository"
	"github.com/kasicredit/lending-engine/internal/rules"
	"github.com/kasicredit/lending-engine/internal/service"
	"github.com/kasicredit/lending-engine/pkg/response"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	appRepo := repository.NewApplicationRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	repaymentRepo := repository.NewRepaymentRepository(db)
	rulesRepo := repository.NewRulesRepository(db)

	// Load the lending rules; invalid rules are fatal at startup
	rulesStore, err := loadRules(cfg, rulesRepo)
	if err != nil {
		log.Fatalf("Failed to load lending rules: %v", err)
	}

	// Initialize service and handlers
	lendingService := service.NewLendingService(appRepo, loanRepo, repaymentRepo, rulesRepo, rulesStore, redisClient, cfg)
	applicationHandler := handler.NewApplicationHandler(lendingService)
	loanHandler := handler.NewLoanHandler(lendingService)
	rulesHandler := handler.NewRulesHandler(lendingService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout)

	// Setup routes
	router := setupRoutes(applicationHandler, loanHandler, rulesHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// loadRules builds the active rules store from the configured source. A fresh
// database without a persisted rule set is seeded with the default policy.
func loadRules(cfg *config.Config, rulesRepo repository.RulesRepository) (*rules.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.Rules.Source == "defaults" {
		return rules.NewStore(domain.DefaultRules())
	}

	loaded, err := rulesRepo.GetActive(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		loaded = domain.DefaultRules()
		if err = rulesRepo.Save(ctx, loaded); err != nil {
			return nil, err
		}
		log.Println("No persisted lending rules found, seeded defaults")
	}

	return rules.NewStore(loaded)
}

func setupRoutes(
	applicationHandler *handler.ApplicationHandler,
	loanHandler *handler.LoanHandler,
	rulesHandler *handler.RulesHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware, response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/applications", applicationHandler.CreateApplication).Methods("POST")
	api.HandleFunc("/applications/reviews", applicationHandler.ListPendingReview).Methods("GET")
	api.HandleFunc("/applications/{applicationId}", applicationHandler.GetApplication).Methods("GET")
	api.HandleFunc("/applications/{applicationId}/review", applicationHandler.ReviewApplication).Methods("POST")
	api.HandleFunc("/applications/{applicationId}/reevaluate", applicationHandler.ReEvaluate).Methods("POST")
	api.HandleFunc("/quotes", applicationHandler.Quote).Methods("POST")

	api.HandleFunc("/loans/{loanId}/repayments", loanHandler.MakeRepayment).Methods("POST")
	api.HandleFunc("/loans/{loanId}/outstanding", loanHandler.GetOutstanding).Methods("GET")
	api.HandleFunc("/loans/{loanId}/schedule", loanHandler.GetSchedule).Methods("GET")

	api.HandleFunc("/rules", rulesHandler.GetRules).Methods("GET")
	api.HandleFunc("/rules", rulesHandler.UpdateRules).Methods("PUT")
	api.HandleFunc("/rules/reload", rulesHandler.ReloadRules).Methods("POST")

	return router
}

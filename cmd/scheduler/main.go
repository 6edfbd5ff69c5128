package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/kasicredit/lending-engine/internal/config"
	"github.com/kasicredit/lending-engine/internal/repository"
	"github.com/kasicredit/lending-engine/internal/rules"
	"github.com/kasicredit/lending-engine/internal/service"
)

const reEvaluateBatchSize = 100

func main() {
	log.Println("Starting lending scheduler...")

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	appRepo := repository.NewApplicationRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	repaymentRepo := repository.NewRepaymentRepository(db)
	rulesRepo := repository.NewRulesRepository(db)

	rulesStore, err := initRules(rulesRepo)
	if err != nil {
		log.Fatalf("Failed to load lending rules: %v", err)
	}

	lendingService := service.NewLendingService(appRepo, loanRepo, repaymentRepo, rulesRepo, rulesStore, nil, cfg)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Schedule tasks
	setupCronJobs(c, cfg, lendingService)

	// Start the scheduler
	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func initRules(rulesRepo repository.RulesRepository) (*rules.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	loaded, err := rulesRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	return rules.NewStore(loaded)
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, lendingService *service.LendingService) {
	// Daily job to flag overdue installments
	_, err := c.AddFunc(cfg.Scheduler.OverdueCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		marked, err := lendingService.MarkOverdue(ctx)
		if err != nil {
			log.Printf("Overdue installment job failed: %v", err)
			return
		}
		log.Printf("Overdue installment job: flagged %d installments", marked)
	})
	if err != nil {
		log.Printf("Error scheduling overdue installment job: %v", err)
	}

	// Daily job to re-run the decision engine over the manual-review backlog.
	// Rules are reloaded first so the backlog is judged by current policy.
	_, err = c.AddFunc(cfg.Scheduler.ReEvaluateCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if _, err := lendingService.ReloadRules(ctx); err != nil {
			log.Printf("Re-evaluation job: rules reload failed: %v", err)
			return
		}

		moved, err := lendingService.ReEvaluatePendingReviews(ctx, reEvaluateBatchSize)
		if err != nil {
			log.Printf("Re-evaluation job failed: %v", err)
			return
		}
		log.Printf("Re-evaluation job: %d applications moved out of manual review", moved)
	})
	if err != nil {
		log.Printf("Error scheduling re-evaluation job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}

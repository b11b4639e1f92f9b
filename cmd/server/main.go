package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"ajopay/config"
	"ajopay/internal/database"
	"ajopay/internal/domain"
	"ajopay/internal/repository"
	"ajopay/internal/router"
	"ajopay/pkg/cloudinary"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[server] no .env file, using environment")
	}
	cfg := config.Load()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("[server] database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("[server] migrate: %v", err)
	}
	database.SeedAdmin(db)

	settingRepo := repository.NewSettingRepository(db)
	if err := settingRepo.SeedDefaults(map[string]string{
		domain.SettingAgentCommissionPct: strconv.FormatFloat(cfg.Savings.AgentCommissionPct, 'f', -1, 64),
		domain.SettingPlanPriceKobo:      strconv.FormatInt(cfg.Savings.PlanPriceKobo, 10),
		domain.SettingReferrerBonusKobo:  strconv.FormatInt(cfg.Savings.ReferrerBonusKobo, 10),
		domain.SettingReferredBonusKobo:  strconv.FormatInt(cfg.Savings.ReferredBonusKobo, 10),
	}); err != nil {
		log.Printf("[server] seed settings: %v", err)
	}

	var cloud cloudinary.Client
	if cfg.Cloudinary.CloudName != "" {
		cloud, err = cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			log.Printf("[server] cloudinary disabled: %v", err)
			cloud = nil
		}
	}

	engine, reconcileSvc := router.Setup(cfg, db, cloud)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Savings.ReconcileCronSpec, func() {
		if _, err := reconcileSvc.Run(); err != nil {
			log.Printf("[server] scheduled reconciliation: %v", err)
		}
	}); err != nil {
		log.Printf("[server] bad reconcile cron spec %q: %v", cfg.Savings.ReconcileCronSpec, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("[server] listening on :%s (%s)", cfg.Server.Port, cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[server] listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("[server] shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[server] forced shutdown: %v", err)
	}
	log.Printf("[server] stopped")
}

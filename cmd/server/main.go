package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/Hendyvelarius/lapidashboard-sub000/internal/alert"
	"github.com/Hendyvelarius/lapidashboard-sub000/internal/api"
	"github.com/Hendyvelarius/lapidashboard-sub000/internal/dashboard"
	"github.com/Hendyvelarius/lapidashboard-sub000/internal/middleware"
	"github.com/Hendyvelarius/lapidashboard-sub000/internal/refresh"
	"github.com/Hendyvelarius/lapidashboard-sub000/internal/registry"
	"github.com/Hendyvelarius/lapidashboard-sub000/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	timezone := os.Getenv("TIMEZONE")
	if timezone == "" {
		timezone = "Asia/Jakarta"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Fatalf("Invalid TIMEZONE %q: %v", timezone, err)
	}

	interval := 5 * time.Minute
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		interval, err = time.ParseDuration(v)
		if err != nil {
			log.Fatalf("Invalid REFRESH_INTERVAL %q: %v", v, err)
		}
	}

	repo, err := repository.NewPostgresRecordRepository(databaseURL)
	if err != nil {
		log.Fatal(err)
	}

	defer func() {
		if err := repo.Close(); err != nil {
			log.Printf("failed to close record repository: %v", err)
		}
	}()

	released, err := registry.NewReleasedBatchRegistry(redisAddr)
	if err != nil {
		log.Fatal(err)
	}

	defer func() {
		if err := released.Close(); err != nil {
			log.Printf("failed to close released batch registry: %v", err)
		}
	}()

	refresher := refresh.NewRefresher(repo, released, loc, interval)

	if threshold, _ := strconv.Atoi(os.Getenv("ALERT_WAITING_THRESHOLD")); threshold > 0 {
		alertTo := os.Getenv("ALERT_TO")
		if alertTo == "" {
			log.Fatal("ALERT_TO is required when ALERT_WAITING_THRESHOLD is set")
		}
		refresher.SetNotifier(alert.NewNotifier(threshold, alertTo, time.Hour))
	}

	if err := refresher.Refresh(context.Background()); err != nil {
		log.Printf("Initial snapshot refresh failed: %v", err)
	}
	go refresher.Start()

	handler := middleware.MetricsMiddleware(api.NewAPI(dashboard.NewDashboard(refresher)))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	log.Printf("Refreshing snapshots every %s (%s)", interval, loc)

	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatal(err)
	}
}

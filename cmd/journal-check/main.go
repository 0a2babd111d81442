package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"journal-metrics-api/config"
	"journal-metrics-api/models"
	"journal-metrics-api/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var (
		req     models.MetricsRequest
		timeout time.Duration
	)
	flag.StringVar(&req.DOI, "doi", "", "publication DOI to check")
	flag.StringVar(&req.ISBN, "isbn", "", "book ISBN to check (Scopus only)")
	flag.StringVar(&req.JournalName, "journal", "", "journal title to check")
	flag.StringVar(&req.ISSN, "issn", "", "journal ISSN; prints journal metrics only")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "overall time limit")
	flag.Parse()

	if config.DatabaseConfigured() {
		if err := config.InitDB(); err != nil {
			log.Printf("Warning: %v; continuing with environment keys only", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	svc, err := services.NewPublicationCheckServiceFromConfig(ctx, config.Load(), config.DB)
	if err != nil {
		log.Fatalf("setup failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if req.ISSN != "" && req.DOI == "" && req.ISBN == "" && req.JournalName == "" {
		metrics, err := svc.FetchJournalMetricsOnly(ctx, req.ISSN, "")
		if err != nil {
			log.Fatalf("journal metrics failed: %v", err)
		}
		_ = enc.Encode(metrics)
		if !metrics.HasSignal() {
			os.Exit(2)
		}
		return
	}

	if err := req.Validate(); err != nil {
		flag.Usage()
		log.Fatalf("invalid arguments: %v", err)
	}

	result, err := svc.Check(ctx, req)
	if err != nil {
		log.Fatalf("check failed: %v", err)
	}
	_ = enc.Encode(result)

	if !found(result.Scopus) && !found(result.WoS) {
		os.Exit(2)
	}
}

func found(r *models.DatabaseCheckResult) bool {
	return r != nil && r.Found
}

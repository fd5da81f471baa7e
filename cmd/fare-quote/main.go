// README: Command-line fare lookup; also seeds the fixed_fares table and tries the free-text classifier.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"transferair/internal/ai"
	"transferair/internal/app"
	"transferair/internal/config"
	"transferair/internal/infra"
	"transferair/internal/modules/pricing"
)

func main() {
	from := flag.String("from", "", "origin place")
	to := flag.String("to", "", "destination place")
	asJSON := flag.Bool("json", false, "print the quote as JSON")
	seedDB := flag.Bool("seed-db", false, "replace fixed_fares with the fares file and exit")
	classify := flag.String("classify", "", "classify a free-text message with Gemini and exit")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	// The CLI never talks to Telegram, so a token is not required.
	if os.Getenv("BOT_TOKEN") == "" {
		_ = os.Setenv("BOT_TOKEN", "cli")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := infra.NewLogger(cfg.Log.Level, true)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch {
	case *classify != "":
		if cfg.AI.GeminiKey == "" {
			log.Fatal("GEMINI_API_KEY environment variable not set")
		}
		provider, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
		if err != nil {
			log.Fatalf("Failed to initialize AI provider: %v", err)
		}
		defer provider.Close()

		g, err := provider.Classify(ctx, *classify)
		if err != nil {
			log.Fatalf("Error classifying message: %v", err)
		}
		fmt.Printf("Intent: %s\n", g.Kind)
		if g.Origin != "" {
			fmt.Printf("Origin: %s\n", g.Origin)
		}
		if g.Destination != "" {
			fmt.Printf("Destination: %s\n", g.Destination)
		}
		return

	case *seedDB:
		if cfg.DB.DSN == "" {
			log.Fatal("TRANSFER_DB_DSN environment variable not set")
		}
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer pool.Close()
		table, err := pricing.LoadTable(cfg.Fares.File)
		if err != nil {
			log.Fatal(err)
		}
		if err := pricing.NewStore(pool).ReplaceFares(ctx, table.Entries()); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Seeded %d fares\n", len(table.Entries()))
		return
	}

	if *from == "" || *to == "" {
		flag.Usage()
		os.Exit(2)
	}

	// Database fares need a pool; the CLI falls back to the file otherwise.
	if cfg.Fares.Source == config.FaresFromDB {
		cfg.Fares.Source = config.FaresFromFile
		logger.Info("fare-quote reads fares from the file")
	}
	svc, err := app.NewPricing(ctx, cfg, nil, nil, logger)
	if err != nil {
		log.Fatal(err)
	}

	q, err := svc.Resolve(ctx, *from, *to)
	if err != nil {
		log.Fatalf("No quote for %s → %s: %v", *from, *to, err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(q); err != nil {
			log.Fatal(err)
		}
		return
	}

	table := svc.Table()
	fmt.Printf("%s → %s (%s", table.Canonical(*from), table.Canonical(*to), q.Source)
	if q.DistanceKm != nil {
		fmt.Printf(", %.1f km %s", *q.DistanceKm, q.Method)
	}
	fmt.Println(")")
	for _, p := range svc.Summary(q) {
		fmt.Printf("  %-10s %6d %s\n", p.Title, p.Amount, table.Currency())
	}
}

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"StressPulse/internal/di"
	"StressPulse/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	once := flag.Bool("once", false, "run one pipeline cycle and exit")
	asOf := flag.String("as-of", "", "as-of date for -once (YYYY-MM-DD, default today)")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s universe=%s indicators=%d", cfg.Environment, cfg.Stress.Universe, len(cfg.Stress.Directions))

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if *once {
		day := time.Now().UTC()
		if *asOf != "" {
			day, err = time.Parse("2006-01-02", *asOf)
			if err != nil {
				log.Fatalf("bad -as-of date: %v", err)
			}
		}
		if err := app.RunOnce(context.Background(), day); err != nil {
			log.Printf("run failed: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}

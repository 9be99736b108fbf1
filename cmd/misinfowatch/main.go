package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/pvandamm/misinfowatch/internal/config"
	"github.com/pvandamm/misinfowatch/internal/llm"
	"github.com/pvandamm/misinfowatch/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Optional .env for API keys; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Failed to load config: %v", err)
		}
		// First run, write the defaults out.
		cfg = config.Default()
		if saveErr := cfg.Save(); saveErr != nil {
			log.Printf("Warning: could not save default config: %v", saveErr)
		}
	}
	cfg.ApplyEnv()

	screenshotsDir, err := config.ScreenshotsDir()
	if err != nil {
		log.Fatalf("Failed to resolve data directory: %v", err)
	}
	if err := os.MkdirAll(screenshotsDir, 0700); err != nil {
		log.Fatalf("Failed to create screenshots directory: %v", err)
	}

	dbPath, err := config.DBPath()
	if err != nil {
		log.Fatalf("Failed to resolve database path: %v", err)
	}

	st, err := store.New(dbPath, screenshotsDir)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	provider, err := llm.New(cfg.LLM)
	if err != nil {
		log.Fatalf("LLM configuration error: %v", err)
	}

	app := newCLIApp(st, cfg, provider, screenshotsDir)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

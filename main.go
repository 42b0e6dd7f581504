package main

import (
	"flag"
	"log"
	"os"
)

func main() {
	// Command line flags
	mode := flag.String("mode", "web", "Run mode: web, cli")
	action := flag.String("action", "sweep", "CLI action: observe, discover, predict, sweep, export")
	source := flag.String("source", SourceAmazon, "Retail source: amazon, flipkart")
	link := flag.String("link", "", "Product link (for -action=observe)")
	name := flag.String("name", "", "Product name (for -action=predict)")
	out := flag.String("out", "", "Output file (for -action=export)")
	port := flag.String("port", "", "Web server port (overrides PORT)")
	flag.Parse()

	cfg := LoadConfig()
	if *port != "" {
		cfg.Port = *port
	}

	switch *mode {
	case "web":
		runWebMode(cfg)
	case "cli":
		runCLIMode(cfg, *action, *source, *link, *name, *out)
	default:
		log.Fatalf("Unknown mode: %s. Available modes: web, cli", *mode)
	}
}

func runWebMode(cfg *Config) {
	log.Println("=== TrackIT Price Tracker Web Server ===")
	log.Printf("Database: %s", cfg.DatabasePath)
	log.Printf("Server will start on http://localhost:%s", cfg.Port)

	server, err := NewWebServer(cfg, true)
	if err != nil {
		log.Fatalf("Failed to initialize web server: %v", err)
	}
	defer server.Close()

	if err := server.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start web server: %v", err)
	}
}

func runCLIMode(cfg *Config, action, source, link, name, out string) {
	log.Println("=== TrackIT Price Tracker CLI ===")
	log.Printf("Database: %s", cfg.DatabasePath)
	log.Printf("Action: %s", action)

	if !isValidSource(source) {
		log.Fatalf("Unknown source: %s", source)
	}

	scraper := NewScrapeClient(cfg.ScrapeTimeout)
	tracker, err := NewTracker(cfg.DatabasePath, scraper)
	if err != nil {
		log.Fatalf("Failed to initialize tracker: %v", err)
	}
	defer tracker.Close()

	switch action {
	case "observe":
		if link == "" {
			log.Fatal("-link is required for -action=observe")
		}
		result, err := tracker.ObserveLink(source, link)
		if err != nil {
			log.Fatalf("Failed to observe %s: %v", link, err)
		}
		log.Printf("Recorded %q (%s) price=%s", result.Product.Name, result.Product.Source, result.Details.RawPrice)
		if result.Prediction == PredictionSentinel {
			log.Printf("No prediction: %s", result.Note)
		} else {
			log.Printf("Drop likelihood: %d%%", result.Prediction)
		}

	case "discover":
		if name == "" {
			log.Fatal("-name is required for -action=discover")
		}
		link, err := scraper.FindFlipkartLink(name)
		if err != nil {
			log.Fatalf("Flipkart search failed: %v", err)
		}
		if link == "" {
			log.Fatalf("No Flipkart product found for %q", name)
		}
		result, err := tracker.ObserveLink(SourceFlipkart, link)
		if err != nil {
			log.Fatalf("Failed to observe %s: %v", link, err)
		}
		log.Printf("Found %s", link)
		log.Printf("Recorded %q price=%s", result.Product.Name, result.Details.RawPrice)

	case "predict":
		if name == "" {
			log.Fatal("-name is required for -action=predict")
		}
		product, err := tracker.database.GetProductByName(source, name)
		if err != nil {
			log.Fatalf("Product %q not found on %s", name, source)
		}
		score, note := tracker.scoreOrSentinel(product.ID)
		if score == PredictionSentinel {
			log.Printf("No prediction for %q: %s", product.Name, note)
		} else {
			log.Printf("Drop likelihood for %q: %d%%", product.Name, score)
		}

	case "sweep":
		notifier := NewNotifier(tracker.database, cfg.Mailer())
		sent, err := notifier.Run()
		if err != nil {
			log.Fatalf("Sweep failed: %v", err)
		}
		log.Printf("Sweep completed, %d notifications sent", sent)

	case "export":
		if out == "" {
			out = source + "_history.xlsx"
		}
		f, err := ExportHistory(tracker.database, source)
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		if err := f.SaveAs(out); err != nil {
			log.Fatalf("Failed to save %s: %v", out, err)
		}
		log.Printf("Exported %s history to %s", source, out)

	default:
		log.Printf("Unknown action: %s", action)
		log.Printf("Available actions: observe, discover, predict, sweep, export")
		os.Exit(1)
	}
}

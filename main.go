package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"respimg/assets"
	"respimg/config"
	"respimg/images"
	"respimg/meta"
	"respimg/server"
	"respimg/sizing"
	"respimg/watcher"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	fmt.Println("respimg - Responsive Image Service")
	fmt.Println("==================================")

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load metadata written by the image build step
	m, err := meta.Load(cfg.Meta.File)
	if err != nil {
		log.Fatalf("Failed to load image meta: %v", err)
	}
	log.Printf("Loaded meta: %d images from %s", len(m.Images), cfg.Meta.File)

	if cfg.Assets.Verify {
		if err := assets.VerifyAndLog(m, cfg.Assets.Dir); err != nil {
			log.Fatalf("Asset verification failed: %v", err)
		}
	}

	store := meta.NewStore(m)
	policy := sizing.Viewport{
		ScreenWidth: cfg.Viewport.ScreenWidth,
		PixelRatio:  cfg.Viewport.PixelRatio,
	}
	svc := images.NewService(store, cfg.RootURL, policy)

	// Create image server
	imageServer := server.NewServer(cfg, svc)

	// Start image server in background
	go func() {
		if err := imageServer.Start(); err != nil {
			log.Fatalf("Image server failed: %v", err)
		}
	}()

	// Reload meta when the build step rewrites it
	var w *watcher.Watcher
	if cfg.Meta.Watch {
		w, err = watcher.NewWatcher(cfg.Meta.File, store)
		if err != nil {
			log.Fatalf("Failed to create watcher: %v", err)
		}
		if err := w.Start(); err != nil {
			log.Fatalf("Failed to start watcher: %v", err)
		}

		// Listen for events
		go func() {
			for event := range w.Events() {
				log.Printf("Meta event: %v - %s", event.Type, event.FilePath)
				if event.Type == watcher.EventReloaded && cfg.Assets.Verify {
					if err := assets.VerifyAndLog(store.Current(), cfg.Assets.Dir); err != nil {
						log.Printf("Asset verification failed: %v", err)
					}
				}
			}
		}()
	}

	log.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	if w != nil {
		w.Stop()
	}
}

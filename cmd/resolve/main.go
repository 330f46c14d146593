package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"respimg/config"
	"respimg/images"
	"respimg/meta"
	"respimg/sizing"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	width := flag.Int("width", 0, "pick the variant for this pixel width")
	size := flag.Int("size", -1, "pick the variant for this viewport percentage")
	typ := flag.String("type", "", "image type (default: inferred from name, or all types when listing)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: resolve [-config file] [-width px | -size vw] [-type t] <image>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	name := flag.Arg(0)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	m, err := meta.Load(cfg.Meta.File)
	if err != nil {
		log.Fatalf("Failed to load image meta: %v", err)
	}

	svc := images.NewService(meta.NewStore(m), cfg.RootURL, sizing.Viewport{
		ScreenWidth: cfg.Viewport.ScreenWidth,
		PixelRatio:  cfg.Viewport.PixelRatio,
	})
	t := meta.ImageType(*typ)

	var out any
	switch {
	case *width > 0:
		out, err = svc.ImageByWidth(name, *width, t)
	case *size >= 0:
		out, err = svc.ImageBySize(name, *size, t)
	default:
		out, err = svc.Images(name, t)
	}
	if err != nil {
		log.Fatalf("Failed to resolve %s: %v", name, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("Failed to write result: %v", err)
	}
}

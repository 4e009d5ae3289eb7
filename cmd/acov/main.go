// Command acov parses Astec property files into per-embryo anatomy
// tables and aligns all stored embryos onto a common developmental clock.
//
// Usage:
//
//	acov -task parse [flags] file.xml...
//	acov -task align [flags]
//	acov -task preprocess [flags] file.xml...
//
// preprocess runs parse followed by align in one invocation.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/acov-bio/acov/internal/batch"
	"github.com/acov-bio/acov/internal/config"
	"github.com/acov-bio/acov/internal/db"
)

func main() {
	var task string
	var dbPath string
	var configPath string
	var geometry bool
	var workers int

	flag.StringVar(&task, "task", "preprocess", "task to run: parse, align or preprocess")
	flag.StringVar(&dbPath, "db", "anatomy.db", "path to sqlite db")
	flag.StringVar(&configPath, "config", "", "path to JSON config (defaults apply when empty)")
	flag.BoolVar(&geometry, "geometry", false, "compute surface geometry and voxelsize correction")
	flag.IntVar(&workers, "workers", 0, "per-embryo parallelism (0 = config value)")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
	}
	if geometry {
		cfg.Geometry = true
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	dbConn, err := db.Open(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer dbConn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := &batch.Pipeline{DB: dbConn, Cfg: cfg}

	switch task {
	case "parse":
		runParse(ctx, p, flag.Args())
	case "align":
		runAlign(ctx, p)
	case "preprocess":
		runParse(ctx, p, flag.Args())
		runAlign(ctx, p)
	default:
		log.Fatalf("unknown task %q: want parse, align or preprocess", task)
	}
}

func runParse(ctx context.Context, p *batch.Pipeline, paths []string) {
	if len(paths) == 0 {
		log.Fatalf("no property files given")
	}
	report, err := p.Parse(ctx, paths)
	if err != nil {
		log.Fatalf("parse: %v", err)
	}
	log.Printf("parsed %d embryos, %d failed", len(report.Parsed), len(report.Failed))
	if len(report.Failed) > 0 && len(report.Parsed) == 0 {
		os.Exit(1)
	}
}

func runAlign(ctx context.Context, p *batch.Pipeline) {
	if err := p.Align(ctx); err != nil {
		log.Fatalf("align: %v", err)
	}
	log.Printf("alignment complete")
}

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"physcore/internal/config"
	"physcore/internal/level"
	"physcore/internal/simchan"
	"physcore/internal/view"
	"strings"
)

func main() {
	// Run from the executable's directory for deployed builds, but not
	// under "go run" which builds into a temp directory.
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		if !strings.Contains(execDir, "go-build") {
			os.Chdir(execDir)
		}
	}

	levelPath := flag.String("level", "assets/levels/demo.yaml", "level file (.json or .yaml)")
	configPath := flag.String("config", config.DefaultPath, "engine config file")
	worker := flag.Bool("worker", false, "step the world on a worker goroutine and render the mirror")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	desc, err := level.Load(*levelPath)
	if err != nil {
		log.Fatalf("level: %v", err)
	}

	var driver *simchan.Driver
	var observer simchan.Fanout
	if *worker {
		if driver, err = simchan.NewDriver(desc, cfg, simchan.Options{Observer: &observer}); err != nil {
			log.Fatalf("driver: %v", err)
		}
	}

	v, err := view.New(desc, cfg, driver)
	if err != nil {
		log.Fatalf("viewer: %v", err)
	}

	if driver != nil {
		observer = append(observer, v)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- driver.Run(ctx) }()
		defer func() {
			cancel()
			if err := <-done; err != nil {
				log.Printf("Channel: %v", err)
			}
		}()
	}

	v.Run()
}

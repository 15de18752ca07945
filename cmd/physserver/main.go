package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"physcore/internal/config"
	"physcore/internal/level"
	"physcore/internal/netsync"
	"physcore/internal/simchan"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

// statsLogger prints a summary line every interval frames.
type statsLogger struct {
	every uint64
}

func (l statsLogger) Observe(frame simchan.Frame) {
	if l.every == 0 || frame.Seq%l.every != 0 {
		return
	}
	log.Printf("Channel: frame %d (%s) ticks=%d contacts=%d unsupported=%d",
		frame.Seq, frame.Mode, frame.Stats.Ticks, frame.Stats.Contacts, frame.Stats.Unsupported)
}

func main() {
	levelPath := flag.String("level", "assets/levels/demo.yaml", "level file (.json or .yaml)")
	configPath := flag.String("config", config.DefaultPath, "engine config file")
	addr := flag.String("addr", "", "listen address, overrides the config")
	logEvery := flag.Uint64("log-every", 600, "log stats every n frames, 0 disables")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *addr != "" {
		cfg.Net.Addr = *addr
	}
	desc, err := level.Load(*levelPath)
	if err != nil {
		log.Fatalf("level: %v", err)
	}

	var observers simchan.Fanout
	driver, err := simchan.NewDriver(desc, cfg, simchan.Options{Observer: &observers})
	if err != nil {
		log.Fatalf("driver: %v", err)
	}
	broadcaster := netsync.NewBroadcaster(cfg.Net, desc.Name, driver.Mirror())
	observers = append(observers, broadcaster, statsLogger{every: *logEvery})

	mux := http.NewServeMux()
	mux.Handle("/ws", broadcaster)
	srv := &http.Server{Addr: cfg.Net.Addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Net: listening on %s", cfg.Net.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Net: %v", err)
			stop()
		}
	}()

	if err := driver.Run(ctx); err != nil {
		log.Printf("Channel: %v", err)
	}

	broadcaster.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

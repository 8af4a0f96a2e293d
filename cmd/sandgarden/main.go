package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sandgarden/internal/config"
	"sandgarden/internal/sim"
	"sandgarden/internal/world"
)

func main() {
	var cfgPath string
	var seed string
	flag.StringVar(&cfgPath, "config", "", "path to world configuration file")
	flag.StringVar(&seed, "seed", "", "override the configured world seed")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if seed != "" {
		cfg.World.Seed = seed
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("world exited with error: %v", err)
	}
}

// run drives the simulation at the configured tick rate until the context
// is cancelled. The player stands at the origin; interactive drivers replace
// this loop and feed real positions into Update.
func run(ctx context.Context, cfg *config.Config) error {
	w := sim.New(cfg, log.Default())
	playerPos := world.Point{X: 0, Y: 0}

	// Materialize the starting area before the loop begins.
	w.TileAt(world.RealmOverworld, playerPos.X, playerPos.Y)

	ticker := time.NewTicker(cfg.World.TickRate.Duration())
	defer ticker.Stop()

	last := time.Now()
	report := time.Now()
	for {
		select {
		case <-ctx.Done():
			log.Printf("shutting down")
			return nil
		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			w.Update(delta, playerPos, nil)
			if now.Sub(report) >= 30*time.Second {
				report = now
				t := w.TileAt(w.ActiveRealm(), playerPos.X, playerPos.Y)
				log.Printf("realm=%s day=%.2f light=%.2f", w.ActiveRealm(), w.Day().Progress(), t.Light)
			}
		}
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}

		// Ensure the process terminates if shutdown stalls.
		time.AfterFunc(10*time.Second, func() {
			log.Printf("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	return ctx, cancel
}

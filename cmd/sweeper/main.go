package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"legado/internal/wire"
)

// The sweeper walks due check-ins, advances each liveness state machine,
// and runs the delivery trigger engine. It either loops on a ticker or,
// with -once, performs a single pass for external cron schedulers.
func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	app, err := wire.InitializeApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Shutdown()

	if *once {
		sweep(context.Background(), app)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	interval := time.Duration(app.Config.Delivery.SweepInterval) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Sweeper starting, interval %s", interval)
	sweep(ctx, app)

	for {
		select {
		case <-ctx.Done():
			log.Println("Sweeper stopping")
			return
		case <-ticker.C:
			sweep(ctx, app)
		}
	}
}

func sweep(ctx context.Context, app *wire.Application) {
	start := time.Now()

	lapsed, err := app.CheckinService.RunDueChecks(ctx)
	if err != nil {
		log.Printf("sweep: due checks failed: %v", err)
	} else if len(lapsed) > 0 {
		log.Printf("sweep: %d profile(s) presumed absent", len(lapsed))
	}

	stats, err := app.Engine.Run(ctx)
	if err != nil {
		log.Printf("sweep: delivery run failed: %v", err)
		return
	}

	log.Printf("sweep complete in %v: %d date, %d checkin, %d notifications",
		time.Since(start), stats.DateDelivered, stats.CheckinDelivered, stats.Notified)
}

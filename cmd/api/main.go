package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"flotanet.org/internal/audit"
	"flotanet.org/internal/auth"
	"flotanet.org/internal/dashboard"
	"flotanet.org/internal/fleet"
	"flotanet.org/internal/httpapi"
	"flotanet.org/internal/obs"
	"flotanet.org/internal/orders"
	"flotanet.org/internal/store/pg"
	"flotanet.org/internal/worklog"
)

// set via -ldflags at build time
var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	addr := os.Getenv("FLOTANET_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	// Connect when a DSN is set; without one the API runs on in-memory
	// stores, which is enough for local frontend work.
	var store *pg.Store
	if dsn := os.Getenv("FLOTANET_PG_DSN"); dsn != "" {
		var err error
		store, err = pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
	}

	authOpts := []auth.ServiceOption{auth.WithAuditFunc(func(ctx context.Context, event string, fields map[string]any) {
		_ = audit.LogEvent(ctx, event, fields)
	})}
	if raw := os.Getenv("FLOTANET_TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("parse FLOTANET_TOKEN_TTL: %v", err)
		}
		authOpts = append(authOpts, auth.WithTokenTTL(ttl))
	}

	var (
		svcs   httpapi.Services
		access audit.AccessRecorder
		probe  httpapi.ReadyProbe
	)
	if store != nil {
		svcs = httpapi.Services{
			Auth:      auth.NewService(store, authOpts...),
			Fleet:     fleet.NewService(store),
			Orders:    orders.NewService(store),
			Worklog:   worklog.NewService(store),
			Dashboard: dashboard.NewService(store),
		}
		access = store
		probe = httpapi.ReadyProbe{DB: store.DB()}
	} else {
		log.Print("FLOTANET_PG_DSN not set, using in-memory stores")
		svcs = httpapi.Services{
			Auth:      auth.NewService(auth.NewInMemoryIdentities(), authOpts...),
			Fleet:     fleet.NewService(fleet.NewInMemory()),
			Orders:    orders.NewService(orders.NewInMemory(nil)),
			Worklog:   worklog.NewService(worklog.NewInMemory(nil)),
			Dashboard: dashboard.NewService(emptyStats{}),
		}
	}

	api := httpapi.New(probe, version, svcs, access)
	if burst, perSec := rateLimitFromEnv(); burst > 0 && perSec > 0 {
		api.SetRateLimit(burst, perSec)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting flotanet-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if store != nil {
		_ = store.Close()
	}
	log.Println("Stopped")
}

func rateLimitFromEnv() (burst, perSec int) {
	burst, _ = strconv.Atoi(os.Getenv("FLOTANET_RATE_BURST"))
	perSec, _ = strconv.Atoi(os.Getenv("FLOTANET_RATE_PER_SEC"))
	return burst, perSec
}

// emptyStats serves the dashboard in memory-only mode, where there is no
// aggregate data to report.
type emptyStats struct{}

func (emptyStats) Collect(context.Context, dashboard.Filter) (dashboard.Stats, error) {
	return dashboard.Stats{}, nil
}

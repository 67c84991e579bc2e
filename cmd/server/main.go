package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sucursalpos/internal/cache"
	"sucursalpos/internal/config"
	"sucursalpos/internal/httpapi"
	"sucursalpos/internal/service"
	"sucursalpos/internal/store"
	"sucursalpos/internal/store/memory"
	pgstore "sucursalpos/internal/store/postgres"
	"sucursalpos/internal/telemetry"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:           "sucursalpos",
		Short:         "Multi-branch point-of-sale backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadWith(v, cfgFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "optional YAML/TOML config file")
	root.PersistentFlags().String("port", "", "HTTP listen port")
	root.PersistentFlags().String("consistency", "", "sale consistency mode: independent or atomic")
	_ = v.BindPFlag("port", root.PersistentFlags().Lookup("port"))
	_ = v.BindPFlag("sale_consistency", root.PersistentFlags().Lookup("consistency"))

	load := func() (config.Config, error) { return config.LoadWith(v, cfgFile) }

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API (default)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				return serve(cmd.Context(), cfg)
			},
		},
		newMigrateCmd(load),
		newCreateAdminCmd(load),
		newSummaryCmd(load),
	)
	return root
}

func serve(ctx context.Context, cfg config.Config) error {
	if err := validateSecurityConfig(cfg); err != nil {
		return fmt.Errorf("invalid security configuration: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	loc, _ := time.LoadLocation(cfg.Timezone)

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(startCtx, cfg.OTLPEndpoint, cfg.ServiceName, version)
	if err != nil {
		log.Printf("tracing unavailable (%v), continuing without spans", err)
		shutdownTracing = func(context.Context) error { return nil }
	}

	repo, closers, err := openRepository(startCtx, cfg)
	if err != nil {
		return err
	}

	revocations := cache.TokenRevocations(cache.NewMemoryRevocations())
	if cfg.RedisAddr != "" {
		redisRevocations := cache.NewRedisRevocations(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisRevocations.Ping(startCtx); err != nil {
			log.Printf("redis unavailable (%v), token revocations kept in memory", err)
			_ = redisRevocations.Close()
		} else {
			revocations = redisRevocations
			closers = append(closers, redisRevocations.Close)
			log.Println("revocations: redis")
		}
	} else {
		log.Println("revocations: memory")
	}

	svc := service.New(repo, service.Options{Location: loc, Consistency: cfg.SaleConsistency})
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, repo, revocations)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("sucursalpos listening on %s (consistency=%s, tz=%s)", cfg.Address(), svc.Consistency(), loc)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	var serveErr error
	select {
	case <-sig:
	case serveErr = <-errCh:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("tracing shutdown error: %v", err)
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
	return serveErr
}

// openRepository picks postgres when DATABASE_URL is set and refuses to fall
// back to memory if it cannot connect.
func openRepository(ctx context.Context, cfg config.Config) (store.Repository, []func() error, error) {
	if cfg.DatabaseURL == "" {
		log.Println("repository: in-memory")
		return memory.NewSeeded(), nil, nil
	}
	pg, err := pgstore.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres unavailable (%w) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
	}
	log.Println("repository: postgres")
	return pg, []func() error{pg.Close}, nil
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is not a known time zone: %w", cfg.Timezone, err)
	}
	if !service.ValidConsistency(cfg.SaleConsistency) {
		return fmt.Errorf("SALE_CONSISTENCY must be %q or %q, got %q", service.ConsistencyIndependent, service.ConsistencyAtomic, cfg.SaleConsistency)
	}
	return nil
}

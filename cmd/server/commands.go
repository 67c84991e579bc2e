package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"sucursalpos/internal/config"
	"sucursalpos/internal/domain"
	"sucursalpos/internal/httpapi"
	"sucursalpos/internal/service"
	"sucursalpos/internal/store"
	pgstore "sucursalpos/internal/store/postgres"
)

type configLoader func() (config.Config, error)

// cliSession is the identity used by maintenance commands.
var cliSession = domain.Session{UserID: "cli", Name: "sucursalpos cli", Role: domain.RoleAdmin}

func newMigrateCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required for migrate")
			}
			ctx, cancel := context.WithTimeout(commandContext(cmd), 30*time.Second)
			defer cancel()

			pg, err := pgstore.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pg.Close()
			if err := pg.Migrate(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}

func newCreateAdminCmd(load configLoader) *cobra.Command {
	var req domain.EmployeeCreateRequest
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required; an in-memory admin would not outlive this command")
			}
			ctx, cancel := context.WithTimeout(commandContext(cmd), 30*time.Second)
			defer cancel()

			repo, closers, err := openRepository(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeAll(closers)

			auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Minute, repo, nil)
			user, err := auth.CreateAdmin(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created with id %s\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "login email")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&req.Name, "name", "Administrator", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSummaryCmd(load configLoader) *cobra.Command {
	var branchID string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print today's sales for a branch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			loc, err := time.LoadLocation(cfg.Timezone)
			if err != nil {
				return fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
			}
			ctx, cancel := context.WithTimeout(commandContext(cmd), 30*time.Second)
			defer cancel()

			repo, closers, err := openRepository(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeAll(closers)

			return printSummary(ctx, cmd.OutOrStdout(), repo, loc, branchID)
		},
	}
	cmd.Flags().StringVar(&branchID, "branch", "", "branch id")
	_ = cmd.MarkFlagRequired("branch")
	return cmd
}

func printSummary(ctx context.Context, w io.Writer, repo store.Repository, loc *time.Location, branchID string) error {
	svc := service.New(repo, service.Options{Location: loc})
	summary, err := svc.TodaySummary(ctx, cliSession, branchID)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "branch %s, %s: %d sales, total %s\n", summary.BranchID, summary.Date, summary.Count, summary.Total.StringFixed(2))
	for _, sale := range summary.Sales {
		fmt.Fprintf(w, "  %s  %s  %s\n", sale.CreatedAt.In(loc).Format("15:04:05"), sale.ID, sale.Total.StringFixed(2))
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func closeAll(closers []func() error) {
	for _, closeFn := range closers {
		_ = closeFn()
	}
}

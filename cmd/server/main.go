package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vendops/earnings/internal/api"
	"github.com/vendops/earnings/internal/config"
	"github.com/vendops/earnings/internal/ingestion"
	"github.com/vendops/earnings/internal/reporting"
	"github.com/vendops/earnings/internal/repository"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "earnings",
		Short:        "Vending revenue, commission and ROI service",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newSeedCmd(), newRunCommissionsCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, seeding an empty database first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withApp(ctx, func(ctx context.Context, a *app) error {
				return a.serve(ctx)
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load locations, machines, fee rules and sample sales from the seed directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				return a.seed(ctx, force)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "seed even when locations already exist")
	return cmd
}

func newRunCommissionsCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "run-commissions",
		Short: "Compute and store commission statements for a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				run, err := a.reports.RunCommissions(ctx, month)
				if err != nil {
					return err
				}
				for _, s := range run.Statements {
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-15s base %10s commission %10s floor=%t\n",
						s.LocationID, s.Method, s.BaseAmount, s.Commission, s.FloorApplied)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "total %s across %d locations\n", run.TotalCommission, len(run.Statements))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", time.Now().UTC().AddDate(0, -1, 0).Format("2006-01"), "month to compute (YYYY-MM)")
	return cmd
}

// app wires the repositories and services shared by every command.
type app struct {
	cfg        config.Config
	log        *zap.Logger
	locations  *repository.LocationRepo
	finance    *repository.FinanceRepo
	feeRules   *repository.FeeRuleRepo
	sales      *repository.SaleRepo
	statements *repository.StatementRepo
	imports    *ingestion.Service
	reports    *reporting.Service
}

func withApp(ctx context.Context, fn func(context.Context, *app) error) error {
	config.LoadEnv()
	cfg := config.FromEnv()

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("initializing database", zap.String("path", cfg.DBPath))
	db, err := repository.InitDB(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("init db: %w", err)
	}
	defer db.Close()

	a := &app{
		cfg:        cfg,
		log:        logger,
		locations:  repository.NewLocationRepo(db),
		finance:    repository.NewFinanceRepo(db),
		feeRules:   repository.NewFeeRuleRepo(db),
		sales:      repository.NewSaleRepo(db),
		statements: repository.NewStatementRepo(db),
	}
	a.imports = ingestion.NewService(repository.NewImportRepo(db), a.sales, logger)
	a.reports = reporting.NewService(a.locations, a.finance, a.feeRules, a.sales, a.statements, logger)
	return fn(ctx, a)
}

func (a *app) serve(ctx context.Context) error {
	if err := a.seed(ctx, false); err != nil {
		a.log.Warn("seed failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           api.NewRouter(a.locations, a.feeRules, a.imports, a.reports, a.log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening", zap.String("addr", srv.Addr), zap.String("api_base", "/api/v1"))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

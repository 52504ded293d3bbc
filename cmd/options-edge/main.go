package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/options-edge/internal/config"
	"github.com/yourusername/options-edge/internal/database"
	"github.com/yourusername/options-edge/internal/logger"
	"github.com/yourusername/options-edge/internal/metrics"
	"github.com/yourusername/options-edge/internal/repository"
	"github.com/yourusername/options-edge/internal/scanner"
	"github.com/yourusername/options-edge/internal/strategy"
	"github.com/yourusername/options-edge/internal/volatility"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	envFile    string
	cfg        *config.Config
	log        *logrus.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "options-edge",
		Short:         "Options analytics and opportunity scanner",
		Long:          `Prices option contracts, tracks implied volatility and scans the watched universe for trading opportunities.`,
		Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(envFile); err != nil {
				return err
			}
			if err := loadConfig(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			log = logger.NewLoggerWithOutput(cfg.App.LogLevel, cfg.App.Environment, cmd.ErrOrStderr())
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before the configuration")

	root.AddCommand(
		newRunCmd(),
		newScanCmd(),
		newVolatilityCmd(),
		newPriceCmd(),
		newOpportunitiesCmd(),
		newWatchCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// loadEnvFile populates the environment from a dotenv file, if one exists.
// Variables already set win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func loadConfig(ctx context.Context) error {
	loaded, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if err := config.LoadSecretsFromAWS(ctx, loaded); err != nil {
		return err
	}
	if err := config.Validate(loaded); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// registryConfig maps scanner settings onto the detector registry
func registryConfig(sc config.ScannerConfig) (strategy.RegistryConfig, error) {
	rc := strategy.RegistryConfig{
		MinScore:          sc.MinScore,
		DetectorMinScores: sc.DetectorMinScores,
	}
	for _, name := range sc.Generations {
		g, err := strategy.ParseGeneration(name)
		if err != nil {
			return strategy.RegistryConfig{}, err
		}
		rc.Generations = append(rc.Generations, g)
	}
	return rc, nil
}

// app holds the components shared by the database-backed commands
type app struct {
	db         *database.DB
	repos      *repository.Repositories
	registry   *strategy.Registry
	scanner    *scanner.Scanner
	volatility *volatility.Service
}

func setupApp(ctx context.Context) (*app, error) {
	metrics.InitRegistry()

	rc, err := registryConfig(cfg.Scanner)
	if err != nil {
		return nil, err
	}
	registry, err := strategy.NewRegistry(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to build detector registry: %w", err)
	}

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err := repository.NewRepositories(db, cfg.Scanner.CacheTTL())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	sc := scanner.New(repos.MarketData(), repos.Opportunity, registry, scanner.Config{
		RiskFreeRate:           cfg.Scanner.RiskFreeRate,
		VolatilityHistoryLimit: cfg.Scanner.VolatilityHistoryLimit,
		AverageVolumeDays:      cfg.Scanner.AverageVolumeDays,
	}, log)

	logger.NewAuditLogger(log).LogConfigLoaded(cfg.App.Environment, cfg.Scanner.Generations, cfg.Scanner.MinScore, cfg.Scanner.Persist)
	log.WithField("detectors", registry.Names()).Debug("Detector registry ready")

	return &app{
		db:         db,
		repos:      repos,
		registry:   registry,
		scanner:    sc,
		volatility: volatility.NewService(repos.VolatilityStore(), log),
	}, nil
}

func (a *app) Close() {
	a.db.Close()
}

// Command cryptofolio runs the portfolio and market-price ingestion
// pipeline: it fetches balances and prices from the configured sources,
// normalizes them into canonical rows and appends them to the shared store.
// Runs are expected to be triggered and serialized by an external scheduler.
//
// Usage:
//
//	cryptofolio --config config.yaml            (run every job)
//	cryptofolio --config config.yaml --job mexc (run one job)
//
// Credentials come from the environment (a local .env file is honored):
//
//	COINGECKO_API_KEY
//	BINANCE_API_KEY, BINANCE_API_SECRET
//	MEXC_API_KEY, MEXC_API_SECRET
//	ZERION_API_KEY
//	DB_USERNAME, DB_PASSWORD, DB_HOST, DB_PORT, DB_NAME (unless database.dsn is set)
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"cryptofolio/config"
	"cryptofolio/internal/clients"
	"cryptofolio/internal/pipeline"
	"cryptofolio/internal/services/prices"
	"cryptofolio/internal/services/snapshot"
	"cryptofolio/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to yaml config")
	jobName := flag.String("job", "all", "job to run: prices, binance, mexc, evm, starknet or all")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	dsn, err := cfg.Database.ResolveDSN()
	if err != nil {
		log.Fatal(err)
	}
	db, err := storage.Open(cfg.Database.Driver, dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	p := pipeline.New(storage.NewLoader(db), logger)

	if err := run(context.Background(), p, cfg, logger, *jobName); err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}
	logger.Info("run complete")
}

func run(ctx context.Context, p *pipeline.Pipeline, cfg *config.Config, logger *zap.Logger, jobName string) error {
	switch jobName {
	case "all", "prices", "binance", "mexc", "evm", "starknet":
	default:
		return fmt.Errorf("unknown job %q", jobName)
	}
	all := jobName == "all"

	if all || jobName == "prices" {
		api := clients.NewCoinGeckoClient(os.Getenv("COINGECKO_API_KEY"))
		job := prices.NewJob(api, cfg.Prices.Assets, cfg.Prices.VsCurrency,
			cfg.Prices.LookbackDays, cfg.Prices.RequestDelay, logger)
		if err := p.RunPriceJob(ctx, job); err != nil {
			return err
		}
	}

	if all || jobName == "binance" {
		apiKey, apiSecret := os.Getenv("BINANCE_API_KEY"), os.Getenv("BINANCE_API_SECRET")
		if apiKey == "" || apiSecret == "" {
			return fmt.Errorf("BINANCE_API_KEY and BINANCE_API_SECRET must be set")
		}
		client := clients.NewBinanceClient(apiKey, apiSecret)
		if err := p.RunBalanceJob(ctx, snapshot.NewBinanceJob(client, logger)); err != nil {
			return err
		}
	}

	if all || jobName == "mexc" {
		apiKey, apiSecret := os.Getenv("MEXC_API_KEY"), os.Getenv("MEXC_API_SECRET")
		if apiKey == "" || apiSecret == "" {
			return fmt.Errorf("MEXC_API_KEY and MEXC_API_SECRET must be set")
		}
		client := clients.NewMexcClient(apiKey, apiSecret)
		if err := p.RunBalanceJob(ctx, snapshot.NewMexcJob(client, logger)); err != nil {
			return err
		}
	}

	if all || jobName == "evm" {
		apiKey := os.Getenv("ZERION_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("ZERION_API_KEY must be set")
		}
		if cfg.EVM.Address == "" {
			return fmt.Errorf("evm.address must be configured")
		}
		client := clients.NewZerionClient(apiKey)
		if err := p.RunBalanceJob(ctx, snapshot.NewEVMJob(client, cfg.EVM.Address, logger)); err != nil {
			return err
		}
	}

	if all || jobName == "starknet" {
		if len(cfg.Starknet.Wallets) == 0 {
			return fmt.Errorf("starknet.wallets must be configured")
		}
		scraper := clients.NewArgentScraper()
		if err := p.RunStarknetJob(ctx, snapshot.NewStarknetJob(scraper, cfg.Starknet.Wallets, logger)); err != nil {
			return err
		}
	}

	return nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/taxright/taxright/internal/config"
	"github.com/taxright/taxright/internal/database"
	taxrightHttp "github.com/taxright/taxright/internal/http"
	invoiceHandler "github.com/taxright/taxright/internal/http/invoice"
	"github.com/taxright/taxright/internal/invoice"
	invoiceStore "github.com/taxright/taxright/internal/invoice/store"
	"github.com/taxright/taxright/internal/knowledge"
	knowledgeStore "github.com/taxright/taxright/internal/knowledge/store"
	"github.com/taxright/taxright/internal/ocr"
	"github.com/taxright/taxright/internal/pricing"
	pricingStore "github.com/taxright/taxright/internal/pricing/store"
	"github.com/taxright/taxright/internal/verification"
	verificationStore "github.com/taxright/taxright/internal/verification/store"
)

func main() {
	_ = godotenv.Load()

	logger := slog.Default()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	prices, err := pricingTable(context.Background(), cfg, pricingStore.New(db))
	if err != nil {
		slog.Error("failed to build pricing table", "error", err)
		os.Exit(1)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		slog.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	var (
		extractor = ocr.NewBedrockExtractor(bedrockruntime.NewFromConfig(awsCfg), cfg.OCR.ModelID, logger)
		kbClient  = knowledge.NewBedrockClient(bedrockagentruntime.NewFromConfig(awsCfg), cfg.KB.ModelARN, logger)
	)

	var (
		invoiceService      = invoice.NewService(invoiceStore.New(db), extractor, prices, logger)
		verificationService = verification.NewService(
			verificationStore.New(db),
			invoiceService,
			kbClient,
			knowledgeStore.New(db),
			prices,
			cfg.KB.ModelID,
			logger,
		)
	)

	invoiceH := invoiceHandler.NewHandler(invoiceService, verificationService)

	router := taxrightHttp.New(invoiceH, cfg.Auth.JWTSecret)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func pricingTable(ctx context.Context, cfg *config.Config, store *pricingStore.Store) (*pricing.Table, error) {
	input, err := decimal.NewFromString(cfg.Pricing.DefaultInputPer1K)
	if err != nil {
		return nil, fmt.Errorf("parsing default input price: %w", err)
	}

	output, err := decimal.NewFromString(cfg.Pricing.DefaultOutputPer1K)
	if err != nil {
		return nil, fmt.Errorf("parsing default output price: %w", err)
	}

	models, err := store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading model pricing: %w", err)
	}

	return pricing.NewTable(models, pricing.ModelPricing{
		InputPer1K:  input,
		OutputPer1K: output,
	}), nil
}

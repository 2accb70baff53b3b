package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/loboISC/arrendamiento-sub000/internal/auth"
	"github.com/loboISC/arrendamiento-sub000/internal/config"
	"github.com/loboISC/arrendamiento-sub000/internal/db"
	"github.com/loboISC/arrendamiento-sub000/internal/engine"
	"github.com/loboISC/arrendamiento-sub000/internal/excel"
	httphandler "github.com/loboISC/arrendamiento-sub000/internal/http"
	"github.com/loboISC/arrendamiento-sub000/internal/http/middleware"
	"github.com/loboISC/arrendamiento-sub000/internal/logger"
	"github.com/loboISC/arrendamiento-sub000/internal/pdf"
	"github.com/loboISC/arrendamiento-sub000/internal/repository"
	"github.com/loboISC/arrendamiento-sub000/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	contractRepo := repository.NewContractRepository(database)
	quotationRepo := repository.NewQuotationRepository(database)

	controller := engine.NewTotalsController(
		engine.NewStatusCalculator(cfg.Contracts.WarnThreshold, cfg.Contracts.CriticalThreshold),
		engine.NewProrationEngine(decimal.NewFromFloat(cfg.Contracts.TaxRate)),
	)

	contractService := service.NewContractService(
		contractRepo,
		quotationRepo,
		excel.NewGenerator(),
		pdf.NewGenerator(),
		controller,
	)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contractService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting contracts service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

package main

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	httpadp "credora-backend/internal/adapter/http"
	mw "credora-backend/internal/adapter/middleware"
	"credora-backend/internal/adapter/repository/mysql"
	"credora-backend/internal/config"
	"credora-backend/internal/infrastructure/cache"
	"credora-backend/internal/infrastructure/db"
	"credora-backend/internal/logging"
	"credora-backend/internal/pricing"
	borrowerUC "credora-backend/internal/usecase/borrower"
	loanUC "credora-backend/internal/usecase/loan"
	poolUC "credora-backend/internal/usecase/pool"
)

func main() {
	cfg := config.Load()
	logging.Initialize(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("mysql connect failed")
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}

	pools := mysql.NewPoolRepository(gdb)
	loans := mysql.NewLoanRepository(gdb)
	accounts := mysql.NewAccountRepository(gdb)
	uow := mysql.NewGormUoW(gdb)
	prices := pricing.DefaultPrices()

	h := httpadp.NewHandler(cfg.WalletConnectEnabled)
	poolH := httpadp.NewPoolHandler(poolUC.NewUsecase(pools, accounts, prices))
	loanH := httpadp.NewLoanHandler(loanUC.NewUsecase(loans, uow, prices))
	accountH := httpadp.NewAccountHandler(borrowerUC.NewUsecase(accounts))

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())
	e.Use(mw.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	// routes
	e.GET("/health", h.Health)

	e.GET("/pools", poolH.ListPools)
	e.POST("/pools", poolH.CreatePool)
	e.GET("/pools/:pool_id", poolH.GetPool)
	e.GET("/pools/:pool_id/quote", poolH.QuotePool)

	e.GET("/loans", loanH.ListLoans)
	e.POST("/loans", loanH.FundLoan)
	e.GET("/loans/:loan_id", loanH.GetLoan)
	e.POST("/loans/:loan_id/repay", loanH.RepayLoan)

	e.POST("/borrowers", accountH.Register)
	e.GET("/borrowers/:account_id", accountH.GetAccount)

	addr := ":" + cfg.AppPort
	log.Info().Str("addr", addr).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

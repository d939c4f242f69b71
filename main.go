package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dapp_payroll/config"
	"dapp_payroll/database"
	"dapp_payroll/handlers"
	"dapp_payroll/middleware"
	"dapp_payroll/services"
	"dapp_payroll/utils"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	if err := utils.InitLogger(cfg.Env); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer utils.SyncLogger()
	logger := utils.Logger

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}

	network, err := config.ResolveNetwork(cfg)
	if err != nil {
		logger.Fatal("Failed to resolve chain network", zap.Error(err))
	}

	// http endpoints connect lazily, so an offline node only degrades chain calls
	client, err := ethclient.Dial(network.RPCURL)
	if err != nil {
		logger.Fatal("Failed to create chain client", zap.String("rpc_url", network.RPCURL), zap.Error(err))
	}
	defer client.Close()

	chain, err := services.NewBlockchainService(client, services.BlockchainOptions{
		ContractAddress: cfg.PayrollContract,
		PrivateKeyHex:   cfg.ChainPrivateKey,
		ChainID:         network.ChainID,
		CallTimeout:     cfg.ChainCallTimeout,
		ReceiptTimeout:  cfg.ChainReceiptTimeout,
		NonceRetryDelay: cfg.ChainNonceRetryDelay,
	})
	if err != nil {
		logger.Fatal("Failed to initialize blockchain service", zap.Error(err))
	}
	logger.Info("Chain gateway configured",
		zap.String("network", network.Name),
		zap.Int64("chain_id", network.ChainID),
		zap.String("contract", cfg.PayrollContract),
		zap.String("signer", chain.SignerAddress().Hex()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	locker, closeLocker := services.NewLocker(ctx, cfg.RedisURL, cfg.PayrollLockTTL)
	defer closeLocker()

	payroll := &services.PayrollSynchronizer{
		Profiles:   services.NewProfileStore(db),
		Ledger:     services.NewLedger(db),
		Aggregator: services.NewPeriodDataAggregator(db),
		Chain:      chain,
		Locker:     locker,
		Audit:      services.NewAuditLogger(db),
	}
	handlers.InitHandlers(db, payroll, services.NewBalanceReconciler(chain))

	authz, err := middleware.NewAuthorizer(cfg.AuthzPolicyPath)
	if err != nil {
		logger.Fatal("Failed to load authorization policy", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.RequestLogger())

	handlers.SetupRoutes(app, authz)

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

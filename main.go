package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"customerhub-backend/config"
	"customerhub-backend/models"
	"customerhub-backend/repository"
	"customerhub-backend/routes"
	"customerhub-backend/services"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		log.Printf("customerhub: %v", err)
		os.Exit(1)
	}
}

// run owns every deferred cleanup, so the log file is flushed before main
// exits with a failure code.
func run() error {
	cfg, err := config.Load(os.Getenv("APP_CONFIG"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	db, err := config.ConnectDB(cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		return err
	}

	auditor := repository.NewAuditor()
	customers := repository.New(db, auditor, models.NewCustomer)
	addresses := repository.New(db, auditor, models.NewAddress)

	digest := services.NewAuditDigestService(db, logger)
	scheduler, err := digest.StartScheduler(cfg.Audit.DigestSchedule)
	if err != nil {
		logger.Error("failed to start audit digest", slog.Any("error", err))
		return err
	}
	if scheduler != nil {
		defer scheduler.Stop()
	}

	r := routes.SetupRouter(routes.Dependencies{
		Customers:   customers,
		Addresses:   addresses,
		Logger:      logger,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	printRoutes(r)

	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}

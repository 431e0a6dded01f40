package main

import (
	"log"
	"net/http"

	"vinestore-be/internal/access"
	"vinestore-be/internal/category"
	"vinestore-be/internal/config"
	"vinestore-be/internal/db"
	"vinestore-be/internal/item"
	"vinestore-be/internal/logger"
	"vinestore-be/internal/mailer"
	"vinestore-be/internal/metrics"
	"vinestore-be/internal/middleware"
	"vinestore-be/internal/order"
	"vinestore-be/internal/report"
	"vinestore-be/internal/storage"
	"vinestore-be/internal/transport"
	"vinestore-be/internal/user"
)

func main() {
	cfg := config.LoadConfig()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	reg := metrics.NewRegistry()

	store, err := storage.NewStore(cfg.UploadDir, cfg.BaseURL)
	if err != nil {
		log.Fatalf("failed to init upload storage: %v", err)
	}

	mail := mailer.New(cfg, reg)

	categorySvc := category.NewService(category.NewRepository(database))
	itemSvc := item.NewService(item.NewRepository(database))
	orderSvc := order.NewService(order.NewRepository(database))
	reportSvc := report.NewService(report.NewRepository(database))
	userSvc := user.NewService(user.NewRepository(database))
	accessSvc := access.NewService(access.NewRepository(database), userSvc, mail)

	handler := transport.NewHandler(
		categorySvc, itemSvc, orderSvc, reportSvc,
		accessSvc, userSvc, store, reg,
	)

	// Outermost first: request id, throttling, identity, then access log.
	var root http.Handler = handler.Routes()
	root = middleware.LoggingMiddleware(reg)(root)
	root = middleware.AuthMiddleware(root)
	root = middleware.RateLimitMiddleware(root)
	root = logger.RequestIDMiddleware(root)

	log.Printf("🚀 store API running at http://localhost:%s/", cfg.AppPort)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, root))
}

package main

import (
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/resto-order-core/config"
	"github.com/yeremiapane/resto-order-core/database"
	"github.com/yeremiapane/resto-order-core/drafts"
	"github.com/yeremiapane/resto-order-core/kds"
	"github.com/yeremiapane/resto-order-core/router"
	"github.com/yeremiapane/resto-order-core/services"
	"github.com/yeremiapane/resto-order-core/utils"
)

func main() {
	cfg := config.Load()
	utils.InitLogger(cfg.LogLevel)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	hub := kds.NewHub()

	// several API nodes share kitchen events through rabbitmq
	if cfg.RabbitMQURL != "" {
		bridge, err := kds.DialBridge(cfg.RabbitMQURL, hub)
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer bridge.Close()
		hub.SetRelay(bridge)
	}

	addr := ":" + cfg.Port
	if cfg.MDNSEnabled {
		announcer, err := services.Announce(cfg.MDNSInstance, addr)
		if err != nil {
			utils.ErrorLogger.Printf("mdns disabled: %v", err)
		}
		defer announcer.Shutdown()
	}

	r := router.SetupRouter(router.Deps{
		DB:                 db,
		Hub:                hub,
		Drafts:             drafts.NewStore(),
		Tokens:             utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		QRMenuBaseURL:      cfg.QRMenuBaseURL,
		CORSOrigin:         cfg.CORSOrigin,
		RequestTimeout:     cfg.RequestTimeout,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
	})
	r.SetTrustedProxies([]string{"127.0.0.1"})

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(addr); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

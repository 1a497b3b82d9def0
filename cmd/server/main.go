package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"
	"github.com/yatube/yatube/internal/config"
	"github.com/yatube/yatube/internal/database"
	"github.com/yatube/yatube/internal/events"
	"github.com/yatube/yatube/internal/handlers"
	"github.com/yatube/yatube/internal/middleware"
	"github.com/yatube/yatube/internal/repository"
	"github.com/yatube/yatube/internal/services"
	"github.com/yatube/yatube/pkg/logger"
	"github.com/yatube/yatube/pkg/utils"
	"github.com/yatube/yatube/web"
)

func main() {
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	var store *repository.Store
	if cfg.DB.Driver == config.DriverMemory {
		store = repository.NewMemoryStore().Store()
	} else {
		db, err := database.Connect(cfg.DB)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		store = repository.NewGormStore(db)
	}

	var publisher services.EventPublisher = services.NoopPublisher{}
	if cfg.NATS.Enabled() {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("yatube"))
		if err != nil {
			log.Fatalf("nats connection failed: %v", err)
		}
		defer nc.Close()
		publisher = events.NewNatsPublisher(nc, cfg.NATS.SubjectPrefix)
		logger.Info("nats_connected", map[string]interface{}{
			"url":            cfg.NATS.URL,
			"subject_prefix": cfg.NATS.SubjectPrefix,
		})
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		Views:        web.NewEngine(),
	})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	handlers.Register(app, handlers.Dependencies{
		Store:        store,
		Events:       publisher,
		PageSize:     cfg.Posts.PerPage,
		LoginURL:     cfg.Server.LoginURL,
		CookieSecure: cfg.Server.CookieSecure,
	})

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":      cfg.Server.Port,
		"address":   listenAddr,
		"db_driver": cfg.DB.Driver,
		"per_page":  cfg.Posts.PerPage,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(cfg.Server.ShutdownTimeout):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}

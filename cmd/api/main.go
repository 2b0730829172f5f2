package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storepulse/internal/app"
	"storepulse/internal/db"
	"storepulse/internal/http/handlers"
	"storepulse/internal/http/middleware"
	"storepulse/internal/telemetry"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// @title StorePulse API
// @version 1.0
// @description Order and customer analytics for multi-shop e-commerce operations

// @host localhost:8080
// @BasePath /api/v1

// CustomValidator adapts validator/v10 to echo's Validator interface
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, reading configuration from environment")
	}

	zerolog.TimeFieldFormat = time.RFC3339
	dev := os.Getenv("ENV") == "development"
	if dev {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Tracing is best-effort: a broken collector must not keep reports down
	shutdownTracing, tracing, err := telemetry.InitTelemetry()
	if err != nil {
		log.Warn().Err(err).Msg("Telemetry init failed, continuing without tracing")
		shutdownTracing = func() {}
	} else if tracing {
		log.Info().Msg("Telemetry initialized")
	}
	defer shutdownTracing()

	database, err := db.NewDatabase()
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	if err := db.RunMigrations(database); err != nil {
		log.Fatal().Err(err).Msg("Migrations failed")
	}

	services, err := app.NewServices(database)
	if err != nil {
		log.Fatal().Err(err).Msg("Service wiring failed")
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.Telemetry())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if dev {
		e.GET("/docs/*", echoSwagger.WrapHandler)
	}

	handlers.SetupRoutes(e.Group("/api/v1"), services)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server start failed")
		}
	}()
	log.Info().Str("port", port).Msg("StorePulse API listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
}

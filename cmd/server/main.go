// Package main initializes and starts the storefront backend: config,
// logging, database, repositories, services, handlers, and the HTTP
// server.
package main

import (
	"cmp"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/dulceria/storefront/internal/config"
	"github.com/dulceria/storefront/internal/db"
	"github.com/dulceria/storefront/internal/logger"
	"github.com/dulceria/storefront/internal/server/handler/http"
	"github.com/dulceria/storefront/internal/server/repository"
	"github.com/dulceria/storefront/internal/server/service"
	"github.com/dulceria/storefront/internal/server/token"
	"go.uber.org/zap"
)

const tokenTTL = 24 * time.Hour

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	zapLogger, err := logger.New("info")
	if err != nil {
		panic(err)
	}
	defer func() { _ = zapLogger.Sync() }()

	if options.JWTSecret == "" {
		zapLogger.Fatal("JWT_SECRET must be set")
	}

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Initialize the user repository, token manager, and auth service.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	tokens := token.NewManager([]byte(options.JWTSecret), tokenTTL)
	authService := service.NewAuthService(userRepo, tokens)

	// Create HTTP handlers and the router.
	authHandler := &http.AuthHandler{AuthService: authService}
	router := http.NewRouter(authHandler, tokens, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Port,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}

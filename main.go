package main

//go:generate swag init

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/subtrackhq/subtrack/db"
	_ "github.com/subtrackhq/subtrack/docs"
	"github.com/subtrackhq/subtrack/handlers"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed static/*
var staticFiles embed.FS

// @title           Subtrack API
// @version         1.0.0
// @description     API for managing clients, services, subscriptions, invoices, and SEPA direct debit remittances.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.basic  BasicAuth

func main() {
	// Optional .env file; real env vars win
	godotenv.Load()

	// Configure structured logging
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	// Open database
	database, err := db.Open()
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Run migrations
	if err := db.Migrate(database); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Set shared DB for handlers
	handlers.DB = database

	// Router setup
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// API routes with basic auth
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(handlers.BasicAuth)

		// Clients
		r.Get("/clients", handlers.ListClients)
		r.Post("/clients", handlers.CreateClient)
		r.Get("/clients/{id}", handlers.GetClient)
		r.Put("/clients/{id}", handlers.UpdateClient)
		r.Delete("/clients/{id}", handlers.DeleteClient)

		// Services
		r.Get("/services", handlers.ListServices)
		r.Post("/services", handlers.CreateService)
		r.Get("/services/{id}", handlers.GetService)
		r.Put("/services/{id}", handlers.UpdateService)
		r.Delete("/services/{id}", handlers.DeleteService)

		// Subscriptions
		r.Get("/subscriptions", handlers.ListSubscriptions)
		r.Post("/subscriptions", handlers.CreateSubscription)
		r.Get("/subscriptions/{id}", handlers.GetSubscription)
		r.Put("/subscriptions/{id}", handlers.UpdateSubscription)
		r.Delete("/subscriptions/{id}", handlers.DeleteSubscription)

		// Invoices
		r.Get("/invoices", handlers.ListInvoices)
		r.Post("/invoices", handlers.CreateInvoice)
		r.Get("/invoices/{id}", handlers.GetInvoice)
		r.Put("/invoices/{id}", handlers.UpdateInvoice)
		r.Delete("/invoices/{id}", handlers.DeleteInvoice)

		// Remittances (SEPA direct debit files)
		r.Get("/remittances", handlers.ListRemittances)
		r.Post("/remittances", handlers.CreateRemittance)
		r.Get("/remittances/{id}/file", handlers.GetRemittanceFile)

		// Settings (organization profile)
		r.Get("/settings", handlers.GetSettings)
		r.Put("/settings", handlers.UpdateSettings)

		// Dashboard
		r.Get("/dashboard", handlers.GetDashboard)
	})

	// Serve static files (UI)
	staticFS, _ := fs.Sub(staticFiles, "static")
	r.Handle("/*", http.FileServer(http.FS(staticFS)))

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := fmt.Sprintf(":%s", port)
	slog.Info("server starting", "address", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

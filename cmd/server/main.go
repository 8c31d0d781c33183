package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/VladimirMonin/students-api-411/internal/app"
	"github.com/VladimirMonin/students-api-411/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	if err := service.Store.ApplyMigrations(service.Config.Database.MigrationsDir); err != nil {
		logger.Error.Fatalf("Failed to apply migrations: %v", err)
	}

	studentHandler := handlers.NewStudentHandler(service)
	auth := handlers.NewAuthMiddleware(service.Auth)

	http.HandleFunc("GET /api/students", handlers.WithMetrics(auth.RequireKey(studentHandler.HandleList)))
	http.HandleFunc("GET /api/students/{id}", handlers.WithMetrics(auth.RequireKey(studentHandler.HandleGet)))
	http.HandleFunc("POST /api/students", handlers.WithMetrics(auth.RequireAdmin(studentHandler.HandleCreate)))
	http.HandleFunc("PUT /api/students/{id}", handlers.WithMetrics(auth.RequireAdmin(studentHandler.HandleUpdate)))
	http.HandleFunc("DELETE /api/students/{id}", handlers.WithMetrics(auth.RequireAdmin(studentHandler.HandleDelete)))

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting students API server on %s", service.Config.Server.Port)
	if !service.Config.Server.EnableAuth {
		logger.Info.Println("API key gate is DISABLED")
	}
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Students API server failed: %v", err)
	}
}

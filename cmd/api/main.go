package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"legado/internal/common"
	"legado/internal/wire"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	log.Println("Initializing application...")
	app, err := wire.InitializeApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	router := setupRouter(app)

	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", app.Config.Server.Host, app.Config.Server.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(app.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(app.Config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	app.Shutdown()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// setupRouter configures HTTP routes
func setupRouter(app *wire.Application) *mux.Router {
	router := mux.NewRouter()

	router.Use(common.CORSMiddleware)
	router.Use(common.LoggingMiddleware)

	// Public one-time confirmation link from prompt emails
	router.HandleFunc("/checkin/confirm", app.CheckinHandler.ConfirmByToken).Methods("GET")

	// Media streaming for delivered message payloads
	if app.Media != nil {
		router.HandleFunc("/media/{fileId}", app.Media.Serve).Methods("GET")
	}

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", healthCheckHandler).Methods("GET")

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", app.ProfileHandler.Register).Methods("POST")
	auth.HandleFunc("/login", app.ProfileHandler.Login).Methods("POST")

	// Billing provider webhook (plan tier changes)
	api.HandleFunc("/billing/webhook", app.ProfileHandler.PlanWebhook).Methods("POST")

	// Authenticated routes
	private := api.PathPrefix("").Subrouter()
	private.Use(common.AuthMiddleware)

	private.HandleFunc("/profile", app.ProfileHandler.Get).Methods("GET")
	private.HandleFunc("/profile", app.ProfileHandler.Update).Methods("PUT")

	private.HandleFunc("/contacts", app.ProfileHandler.AddContact).Methods("POST")
	private.HandleFunc("/contacts", app.ProfileHandler.ListContacts).Methods("GET")
	private.HandleFunc("/contacts/{id}", app.ProfileHandler.RemoveContact).Methods("DELETE")

	private.HandleFunc("/messages", app.MessageHandler.Create).Methods("POST")
	private.HandleFunc("/messages", app.MessageHandler.List).Methods("GET")
	private.HandleFunc("/messages/{id}", app.MessageHandler.Get).Methods("GET")
	private.HandleFunc("/messages/{id}", app.MessageHandler.Update).Methods("PUT")
	private.HandleFunc("/messages/{id}/rule", app.MessageHandler.SetRule).Methods("PUT")
	private.HandleFunc("/messages/{id}/recipients", app.MessageHandler.SetRecipients).Methods("PUT")
	private.HandleFunc("/messages/{id}/schedule", app.MessageHandler.Schedule).Methods("POST")

	private.HandleFunc("/checkin", app.CheckinHandler.Get).Methods("GET")
	private.HandleFunc("/checkin/confirm", app.CheckinHandler.Confirm).Methods("POST")

	if app.Media != nil {
		private.HandleFunc("/media", app.Media.Upload).Methods("POST")
	}

	// Admin routes: authenticated, admin claim, rate limited per client IP
	admin := private.PathPrefix("/admin").Subrouter()
	admin.Use(common.AdminMiddleware)
	admin.Use(common.RateLimitMiddleware(app.RateLimiter))
	admin.HandleFunc("/checkins/{profileID}/reset", app.CheckinHandler.Reset).Methods("POST")
	admin.HandleFunc("/audit", app.AuditHandler.List).Methods("GET")

	return router
}

// healthCheckHandler provides basic health check
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"legado-api"}`))
}

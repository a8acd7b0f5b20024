// main.go
// Stadtwache API - municipal safety backend
// JWT authentication, Firestore persistence, websocket realtime events

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

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"stadtwache/auth"
	"stadtwache/config"
	"stadtwache/db"
	"stadtwache/handlers"
	"stadtwache/incidents"
	"stadtwache/middleware"
	"stadtwache/models"
	"stadtwache/presence"
	"stadtwache/realtime"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	cfg := config.Load()
	cfg.Validate()

	log.Printf("🚀 Starting Stadtwache API Server")
	log.Printf("📍 Environment: %s", cfg.Server.Environment)
	log.Printf("🔧 Port: %s", cfg.Server.Port)

	ctx := context.Background()
	firestoreDB, err := db.NewFirestoreDB(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsPath)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Firestore: %v", err)
	}
	defer firestoreDB.Close()

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiration)
	log.Printf("🔐 JWT Manager initialized (expiration: %v)", cfg.JWT.Expiration)

	// Realtime plumbing: hub fans events out, tracker decides who counts
	// as online, the engine drives incident state.
	hub := realtime.NewHub()
	tracker := presence.NewTracker(cfg.Presence.OfflineThreshold, hub)
	rtServer := realtime.NewServer(hub, firestoreDB, tracker)
	engine := incidents.NewEngine(firestoreDB, hub, models.Location{
		Lat: cfg.Defaults.Lat,
		Lng: cfg.Defaults.Lng,
	})

	authHandler := handlers.NewAuthHandler(firestoreDB, jwtManager)
	userHandler := handlers.NewUserHandler(firestoreDB)
	presenceHandler := handlers.NewPresenceHandler(firestoreDB, tracker)
	incidentHandler := handlers.NewIncidentHandler(firestoreDB, engine)
	messageHandler := handlers.NewMessageHandler(firestoreDB, hub)
	reportHandler := handlers.NewReportHandler(firestoreDB)
	personHandler := handlers.NewPersonHandler(firestoreDB, hub)
	adminHandler := handlers.NewAdminHandler(firestoreDB, tracker)
	rosterHandler := handlers.NewRosterHandler(firestoreDB, hub)
	exportHandler := handlers.NewExportHandler(firestoreDB)
	wsHandler := handlers.NewWSHandler(firestoreDB, jwtManager, rtServer)
	log.Printf("✅ Handlers initialized")

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	rateLimiter.StartCleanup(time.Hour)
	log.Printf("🛡️  Rate limiter initialized (%d requests per %v)", cfg.RateLimit.Requests, cfg.RateLimit.Window)

	authenticated := middleware.AuthMiddleware(jwtManager, firestoreDB)
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	staffOnly := middleware.RequireRole(models.RoleAdmin, models.RolePolice, models.RoleTrainee)

	r := chi.NewRouter()
	r.Use(rateLimiter.Middleware())
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))

	r.Get("/health", handleHealth)
	r.Get("/ws", wsHandler.Connect)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/admin/create-first-user", userHandler.CreateFirstUser)
		r.Get("/app-config", adminHandler.GetAppConfig)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authenticated)

			r.Get("/auth/me", authHandler.Me)
			r.Put("/auth/profile", authHandler.UpdateProfile)

			// Presence
			r.Post("/users/online-status", presenceHandler.MarkOnline)
			r.Post("/users/heartbeat", presenceHandler.Heartbeat)
			r.Get("/users/online", presenceHandler.ListOnline)
			r.Post("/users/logout", presenceHandler.Logout)
			r.Post("/users/status", userHandler.UpdateStatus)

			// Users
			r.With(staffOnly).Get("/users", userHandler.ListUsers)
			r.With(staffOnly).Get("/users/by-status", userHandler.ListByStatus)
			r.Get("/users/{userID}", userHandler.GetUser)
			r.With(adminOnly).Put("/users/{userID}", userHandler.UpdateUser)
			r.With(adminOnly).Delete("/users/{userID}", userHandler.DeleteUser)

			// Incidents
			r.Post("/incidents", incidentHandler.CreateIncident)
			r.Get("/incidents", incidentHandler.ListIncidents)
			r.Get("/incidents/my", incidentHandler.MyIncidents)
			r.Get("/incidents/{incidentID}", incidentHandler.GetIncident)
			r.Put("/incidents/{incidentID}", incidentHandler.UpdateIncident)
			r.Post("/incidents/{incidentID}/assign", incidentHandler.AssignIncident)
			r.Post("/incidents/{incidentID}/complete", incidentHandler.CompleteIncident)
			r.With(adminOnly).Delete("/incidents/{incidentID}", incidentHandler.DeleteIncident)

			// Messages
			r.Post("/messages", messageHandler.SendMessage)
			r.Get("/messages", messageHandler.ChannelMessages)
			r.Get("/messages/private/{userID}", messageHandler.PrivateMessages)
			r.Delete("/messages/{messageID}", messageHandler.DeleteMessage)

			// Reports
			r.With(staffOnly).Post("/reports", reportHandler.CreateReport)
			r.With(staffOnly).Get("/reports", reportHandler.ListReports)
			r.With(staffOnly).Get("/reports/folders", reportHandler.ReportFolders)
			r.With(staffOnly).Get("/reports/export", exportHandler.ExportReports)
			r.With(staffOnly).Get("/reports/{reportID}", reportHandler.GetReport)
			r.With(staffOnly).Put("/reports/{reportID}", reportHandler.UpdateReport)
			r.With(adminOnly).Delete("/reports/{reportID}", reportHandler.DeleteReport)

			// Person registry
			r.With(staffOnly).Post("/persons", personHandler.CreatePerson)
			r.With(staffOnly).Get("/persons", personHandler.ListPersons)
			r.With(staffOnly).Get("/persons/stats", personHandler.PersonStats)
			r.With(staffOnly).Get("/persons/{personID}", personHandler.GetPerson)
			r.With(staffOnly).Put("/persons/{personID}", personHandler.UpdatePerson)
			r.With(staffOnly).Delete("/persons/{personID}", personHandler.DeletePerson)

			// Roster
			r.Post("/vacations", rosterHandler.RequestVacation)
			r.Get("/vacations", rosterHandler.ListVacations)
			r.With(adminOnly).Post("/vacations/{vacationID}/decide", rosterHandler.DecideVacation)
			r.Delete("/vacations/{vacationID}", rosterHandler.CancelVacation)
			r.Post("/sick-leaves", rosterHandler.ReportSickLeave)
			r.Get("/sick-leaves", rosterHandler.ListSickLeaves)
			r.With(adminOnly).Post("/sick-leaves/{leaveID}/decide", rosterHandler.DecideSickLeave)
			r.Delete("/sick-leaves/{leaveID}", rosterHandler.CancelSickLeave)
			r.Post("/check-ins", rosterHandler.CheckIn)
			r.Get("/check-ins/my", rosterHandler.MyCheckIns)
			r.With(staffOnly).Get("/locations/live", rosterHandler.LiveLocations)
			r.With(staffOnly).Post("/locations/update", rosterHandler.UpdateLocation)
			r.With(staffOnly).Post("/emergency/broadcast", rosterHandler.BroadcastEmergency)
			r.With(staffOnly).Get("/emergency/broadcasts", rosterHandler.ListEmergencies)

			// Admin
			r.With(adminOnly).Get("/admin/stats", adminHandler.Stats)
			r.With(adminOnly).Get("/admin/attendance", adminHandler.Attendance)
			r.With(adminOnly).Post("/admin/assign-user", adminHandler.AssignUser)
			r.With(adminOnly).Put("/admin/app-config", adminHandler.UpdateAppConfig)
			r.With(adminOnly).Post("/districts", adminHandler.CreateDistrict)
			r.With(staffOnly).Get("/districts", adminHandler.ListDistricts)
			r.With(adminOnly).Delete("/districts/{districtID}", adminHandler.DeleteDistrict)
			r.With(adminOnly).Post("/teams", adminHandler.CreateTeam)
			r.With(staffOnly).Get("/teams", adminHandler.ListTeams)
			r.With(adminOnly).Put("/teams/{teamID}/status", adminHandler.UpdateTeamStatus)
			r.With(adminOnly).Delete("/teams/{teamID}", adminHandler.DeleteTeam)
		})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("✅ Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

// Health check endpoint
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":%d,"version":"1.0.0"}`, time.Now().Unix())
}

package rest

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/swaggo/swag"

	_ "rolecoach/docs"
	"rolecoach/internal/cache"
	"rolecoach/internal/log"
	"rolecoach/internal/service"
	"rolecoach/internal/transport/rest/handler"
	"rolecoach/internal/transport/rest/middleware"
	"rolecoach/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService *service.AuthService
	Diarizer    handler.Diarizer
	Analyzer    handler.Analyzer
	WSHub       *ws.Hub
	Progress    cache.ProgressCache

	// CORSAllowedOrigins is a comma-separated list, "*" for any
	CORSAllowedOrigins string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	diarizeHandler := handler.NewDiarizeHandler(c.Diarizer)
	analysisHandler := handler.NewAnalysisHandler(c.Analyzer)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.CORSAllowedOrigins)
	if c.Progress != nil {
		wsHandler.SetProgressCache(c.Progress)
	}

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSAllowedOrigins))
	r.Use(middleware.RequestLogger)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			log.Error().Err(err).Msg("failed to render swagger doc")
			http.Error(w, "swagger doc unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/sessions/{sessionId}", wsHandler.SessionWS).Methods("GET")

	// Trainer routes
	trainerRoutes := v1.NewRoute().Subrouter()
	trainerRoutes.Use(authMW.RequireTrainer)

	trainerRoutes.HandleFunc("/diarize", diarizeHandler.Diarize).Methods("POST", "OPTIONS")
	trainerRoutes.HandleFunc("/analysis/role-play", analysisHandler.AnalyzeRolePlay).Methods("POST", "OPTIONS")
	trainerRoutes.HandleFunc("/analysis/{instanceId}", analysisHandler.GetAnalysis).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	allowedOrigins = strings.TrimSpace(allowedOrigins)
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	origins := make(map[string]bool)
	for _, o := range strings.Split(allowedOrigins, ",") {
		origins[strings.TrimSpace(o)] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case origins["*"]:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && origins[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

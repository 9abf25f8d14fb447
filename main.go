package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/ordena/backend/src/config"
	"github.com/username/ordena/backend/src/database"
	"github.com/username/ordena/backend/src/handlers"
	"github.com/username/ordena/backend/src/logger"
	"github.com/username/ordena/backend/src/processors"
	"github.com/username/ordena/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin == config.Cfg.AllowedOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag, Content-Disposition")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Ordena backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing analysis result cache...")
	resultCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	scorer := processors.NewScoringProcessor()
	var analyzer processors.Analyzer = processors.NewHeuristicAnalyzer(scorer)
	if config.Cfg.AnalyzerProvider == "mock" {
		analyzer = processors.NewMockRemoteAnalyzer(analyzer, config.Cfg.AnalysisMockDelay)
		logger.L.Info("Using mock remote analyzer", "delay", config.Cfg.AnalysisMockDelay)
	}

	analysisService := services.NewAnalysisService(analyzer, resultCache)

	uploadHandler := handlers.NewUploadHandler(analysisService)
	analysisHandler := handlers.NewAnalysisHandler(analysisService)
	productHandler := handlers.NewProductHandler(analysisService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/upload", uploadHandler.HandleUpload)
	apiRouter.HandleFunc("POST /api/analyze", analysisHandler.HandleAnalyze)
	apiRouter.HandleFunc("GET /api/analyze/latest", analysisHandler.HandleGetLatestAnalysis)
	apiRouter.HandleFunc("POST /api/order/apply", analysisHandler.HandleApplyOrder)
	apiRouter.HandleFunc("GET /api/history", analysisHandler.HandleGetAnalysisHistory)
	apiRouter.HandleFunc("GET /api/products", productHandler.HandleListProducts)
	apiRouter.HandleFunc("POST /api/products", productHandler.HandleCreateProduct)
	apiRouter.HandleFunc("PUT /api/products/{id}", productHandler.HandleUpdateProduct)
	apiRouter.HandleFunc("DELETE /api/products/all", productHandler.HandleDeleteAllProducts)
	apiRouter.HandleFunc("DELETE /api/products/{id}", productHandler.HandleDeleteProduct)
	apiRouter.HandleFunc("GET /api/export", productHandler.HandleExportCSV)
	apiRouter.HandleFunc("GET /api/template", productHandler.HandleTemplateCSV)

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Ordena Backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}

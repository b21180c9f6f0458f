package main

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"calmhub/internal/config"
	"calmhub/internal/database"
	"calmhub/internal/handlers"
	"calmhub/internal/repository"
	"calmhub/internal/service"
	"calmhub/internal/simplifier"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Load templates
	templates, err := loadTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	log.Println("Templates loaded successfully")

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db)
	relationshipRepo := repository.NewRelationshipRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	helpRepo := repository.NewHelpRequestRepository(db)

	// Initialize services
	authService := service.NewAuthService(accountRepo, cfg.SessionDuration)
	rosterService := service.NewRosterService(relationshipRepo)
	lessonService := service.NewLessonService(lessonRepo, simplifier.NewClient(cfg.OpenAIAPIKey))
	progressService := service.NewProgressService(assignmentRepo, relationshipRepo)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	helpService := service.NewHelpService(helpRepo, accountRepo, emailService)

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
		"facebook": {
			Name:  "facebook",
			Label: "Facebook",
			Config: &oauth2.Config{
				ClientID:     cfg.FacebookClientID,
				ClientSecret: cfg.FacebookClientSecret,
				Endpoint:     facebook.Endpoint,
				Scopes:       []string{"email", "public_profile"},
			},
			UserInfoURL: "https://graph.facebook.com/me?fields=id,name,email",
		},
		"apple": {
			Name:  "apple",
			Label: "Apple",
			Config: &oauth2.Config{
				ClientID:     cfg.AppleClientID,
				ClientSecret: cfg.AppleClientSecret,
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://appleid.apple.com/auth/authorize",
					TokenURL: "https://appleid.apple.com/auth/token",
				},
				Scopes: []string{"name", "email"},
			},
			AuthParams: map[string]string{
				"response_mode": "query",
			},
		},
	}

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService, cfg.CSRFSecret)
	authHandler := handlers.NewAuthHandler(authService, templates, oauthProviders, cfg.OAuthRedirectBaseURL)
	grownupHandler := handlers.NewGrownupHandler(rosterService, lessonService, progressService, helpService, middleware, templates)
	learnerHandler := handlers.NewLearnerHandler(progressService, rosterService, helpService, middleware, templates)

	// Setup routes
	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))

	// Public routes
	mux.HandleFunc("GET /", authHandler.Home)
	mux.HandleFunc("GET /login", authHandler.ShowLogin)
	mux.HandleFunc("POST /login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET /register", authHandler.ShowRegister)
	mux.HandleFunc("POST /register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /logout", authHandler.Logout)
	mux.HandleFunc("GET /auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)

	// Protected grown-up routes
	mux.HandleFunc("GET /grownup/dashboard", middleware.RequireGrownup(grownupHandler.Dashboard))
	mux.HandleFunc("GET /grownup/learners", middleware.RequireGrownup(grownupHandler.ShowLearners))
	mux.HandleFunc("POST /grownup/learners/link", middleware.RequireGrownup(middleware.CSRFProtect(grownupHandler.LinkLearner)))
	mux.HandleFunc("GET /grownup/lessons/new", middleware.RequireGrownup(grownupHandler.ShowComposer))
	mux.HandleFunc("POST /grownup/lessons/generate", middleware.RequireGrownup(middleware.CSRFProtect(grownupHandler.GenerateLesson)))
	mux.HandleFunc("POST /grownup/lessons", middleware.RequireGrownup(middleware.CSRFProtect(grownupHandler.SaveLesson)))
	mux.HandleFunc("GET /grownup/progress", middleware.RequireGrownup(grownupHandler.ShowProgress))
	mux.HandleFunc("GET /grownup/help", middleware.RequireGrownup(grownupHandler.ShowHelpRequests))
	mux.HandleFunc("POST /grownup/help/{id}/resolve", middleware.RequireGrownup(middleware.CSRFProtect(grownupHandler.ResolveHelpRequest)))

	// Protected learner routes
	mux.HandleFunc("GET /learner/dashboard", middleware.RequireLearner(learnerHandler.Dashboard))
	mux.HandleFunc("GET /learner/assignments/{id}", middleware.RequireLearner(learnerHandler.ShowLesson))
	mux.HandleFunc("POST /learner/assignments/{id}/advance", middleware.RequireLearner(middleware.CSRFProtect(learnerHandler.AdvanceStep)))
	mux.HandleFunc("POST /learner/assignments/{id}/complete", middleware.RequireLearner(middleware.CSRFProtect(learnerHandler.CompleteLesson)))
	mux.HandleFunc("GET /learner/help", middleware.RequireLearner(learnerHandler.ShowHelpForm))
	mux.HandleFunc("POST /learner/help", middleware.RequireLearner(middleware.CSRFProtect(learnerHandler.SubmitHelp)))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupExpiredSessions(authService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}

// loadTemplates loads all template files
func loadTemplates(templatesPath string) (*template.Template, error) {
	baseTemplate := filepath.Join(templatesPath, "base.tmpl")

	patterns := []string{
		filepath.Join(templatesPath, "auth/*.tmpl"),
		filepath.Join(templatesPath, "grownup/*.tmpl"),
		filepath.Join(templatesPath, "learner/*.tmpl"),
	}

	var files []string
	files = append(files, baseTemplate)

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}

	// Define template functions
	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"derefTime": func(t *time.Time) time.Time {
			if t == nil {
				return time.Time{}
			}
			return *t
		},
		"percent": func(step, total int) int {
			if total == 0 {
				return 0
			}
			return (step + 1) * 100 / total
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return tmpl, nil
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else {
			log.Println("Expired sessions cleaned up")
		}
	}
}

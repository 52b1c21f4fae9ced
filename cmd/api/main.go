package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/medportal/portal-api/internal/config"
	"github.com/medportal/portal-api/internal/email"
	"github.com/medportal/portal-api/internal/handler"
	appointmentHandler "github.com/medportal/portal-api/internal/handler/appointment"
	authHandler "github.com/medportal/portal-api/internal/handler/auth"
	prescriptionHandler "github.com/medportal/portal-api/internal/handler/prescription"
	recordHandler "github.com/medportal/portal-api/internal/handler/record"
	"github.com/medportal/portal-api/internal/middleware"
	"github.com/medportal/portal-api/internal/repository/postgres"
	"github.com/medportal/portal-api/internal/router"
	"github.com/medportal/portal-api/internal/service/appointment"
	authService "github.com/medportal/portal-api/internal/service/auth"
	"github.com/medportal/portal-api/internal/service/prescription"
	"github.com/medportal/portal-api/internal/service/record"
	"github.com/medportal/portal-api/internal/session"
	"github.com/medportal/portal-api/pkg/auth"
	"github.com/medportal/portal-api/pkg/logger"
	"github.com/medportal/portal-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	sessions, err := session.NewStore(session.Config{
		URL: cfg.Redis.URL,
		TTL: cfg.Session.TTL(),
	})
	if err != nil {
		log.Fatal(err, "failed to connect to Redis")
	}
	defer sessions.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	prescriptionRepo := postgres.NewPrescriptionRepository(db)
	recordRepo := postgres.NewMedicalRecordRepository(db)

	// Services
	hasher := security.NewBcryptHasher(security.DefaultBcryptCost)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	emailSvc := email.NewService(cfg.SMTP)

	authSvc := authService.NewService(userRepo, hasher, jwtSvc, sessions)
	appointmentSvc := appointment.NewService(appointmentRepo, userRepo, emailSvc, log)
	prescriptionSvc := prescription.NewService(prescriptionRepo, appointmentRepo, userRepo, emailSvc, log)
	recordSvc := record.NewService(recordRepo, userRepo, cfg.Upload.Dir, log)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(sessions, jwtSvc, cfg.Session.CookieName)

	base := handler.BaseHandler{Sessions: sessions}
	h := handler.NewHandler(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if err := sessions.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	authH := authHandler.NewHandler(authSvc, cfg.Session.CookieName, int(cfg.Session.TTL().Seconds()))
	appointmentH := appointmentHandler.NewHandler(appointmentSvc, base)
	prescriptionH := prescriptionHandler.NewHandler(prescriptionSvc, base)
	recordH := recordHandler.NewHandler(recordSvc, base)

	r := router.NewRouter(
		authMiddleware,
		authH,
		appointmentH,
		prescriptionH,
		recordH,
		h,
		router.RouterConfig{
			RateLimit:     rate.Limit(cfg.Server.RateLimit),
			RateBurst:     cfg.Server.RateBurst,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "portal_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err, "server forced to shutdown")
	}

	log.Info("server exited properly")
}

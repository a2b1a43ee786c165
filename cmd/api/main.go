package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/xavierca1/lead-system/internal/config"
	"github.com/xavierca1/lead-system/internal/infra/database"
	"github.com/xavierca1/lead-system/internal/infra/http/handlers"
	"github.com/xavierca1/lead-system/internal/infra/http/middleware"
	"github.com/xavierca1/lead-system/internal/infra/queue"
	"github.com/xavierca1/lead-system/internal/infra/session"
	"github.com/xavierca1/lead-system/internal/infra/worker"
	"github.com/xavierca1/lead-system/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuração inválida: %v", err)
	}
	if err := cfg.ValidateAPI(); err != nil {
		log.Fatalf("configuração inválida: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("falha ao conectar no banco: %v", err)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("falha ao criar schema: %v", err)
		}
		log.Println("schema verificado")
	}

	// 1. Repositórios
	leadRepo := database.NewLeadRepository(db)
	userRepo := database.NewUserRepository(db)
	revokedRepo := database.NewSessionRepository(db)

	// 2. Fila (opcional): sem RABBITMQ_URL as transições não geram eventos
	var (
		publisher usecase.StageEventPublisher
		health    *handlers.HealthHandler
	)
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("falha ao conectar no RabbitMQ: %v", err)
		}
		defer rabbitMQ.Close()
		publisher = queue.NewProducer(rabbitMQ.Ch)
		health = handlers.NewHealthHandler(db, rabbitMQ.Conn)
	} else {
		log.Println("RABBITMQ_URL não definida, eventos de estágio desativados")
		health = handlers.NewHealthHandler(db, nil)
	}

	sessions, err := session.NewManager(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("sessão: %v", err)
	}
	sessions.WithRevocations(revokedRepo)
	go worker.NewCleanupWorker("revoked-sessions", revokedRepo, time.Hour).Start(ctx)

	// 3. UseCases
	pipelineUC := usecase.NewPipelineUseCase(leadRepo, publisher)
	pipelineUC.Transitions = middleware.TransitionCounter{}
	authUC := usecase.NewAuthUseCase(userRepo)

	// 4. Handlers
	limiter := handlers.NewRateLimiter(cfg.LoginRatePerMinute)
	go worker.NewCleanupWorker("rate-limiter", limiter, 5*time.Minute).Start(ctx)

	authHandler := handlers.NewAuthHandler(authUC, sessions, limiter)
	authHandler.SecureCookie = cfg.SecureCookie

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:        authHandler,
		Leads:       handlers.NewLeadHandler(pipelineUC),
		Dashboard:   handlers.NewDashboardHandler(pipelineUC),
		Health:      health,
		Sessions:    sessions,
		CORSOrigins: cfg.CORSOrigins,
		TrustProxy:  cfg.TrustProxy,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("API de leads rodando em %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("servidor HTTP: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("encerrando...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("erro no shutdown: %v", err)
	}
}

package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"threadvote/internal/auth"
	"threadvote/internal/config"
	"threadvote/internal/db"
	"threadvote/internal/router"
	"threadvote/internal/services"
	"threadvote/internal/store"

	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// Server owns the HTTP listener and the connections it serves from.
type Server struct {
	httpServer   *http.Server
	sqlDB        *sql.DB
	closeRevoked func() error
	log          *zap.Logger
}

// New connects to Postgres and the revocation store and wires every layer.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*Server, error) {
	conn, err := db.OpenFromConfig(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	revoked, closeRevoked := auth.NewRevocationStore(ctx, cfg.Redis, cfg.Session.MaxAge, log)

	userRepo := store.NewUserRepository(conn)
	postRepo := store.NewPostRepository(conn)
	commentRepo := store.NewCommentRepository(conn)
	voteRepo := store.NewVoteRepository(conn)

	authService := services.NewAuthService(userRepo)
	engine := router.New(cfg, log, router.Deps{
		Auth:     authService,
		Posts:    services.NewPostService(postRepo, commentRepo, voteRepo),
		Comments: services.NewCommentService(postRepo, commentRepo),
		Votes:    services.NewVoteService(voteRepo),
		Sessions: auth.NewManager(revoked, authService, cfg.Session.MaxAge, cfg.IsProduction()),
		DB:       sqlDB,
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      engine,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		sqlDB:        sqlDB,
		closeRevoked: closeRevoked,
		log:          log,
	}, nil
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("threadvote server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		s.release()
		return err
	case sig := <-quit:
		s.log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	}
	return s.Shutdown()
}

// Shutdown drains in-flight requests and closes the database and Redis clients.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		s.log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		s.log.Info("HTTP server shutdown success")
	}
	s.release()
	return err
}

func (s *Server) release() {
	if err := s.closeRevoked(); err != nil {
		s.log.Warn("close revocation store", zap.Error(err))
	}
	if err := s.sqlDB.Close(); err != nil {
		s.log.Warn("close database", zap.Error(err))
	}
}

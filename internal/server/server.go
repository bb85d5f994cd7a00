package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"invoicehub/internal/kvstore"
	"invoicehub/internal/mailer"
	"invoicehub/internal/store"
)

type Server struct {
	port   int
	store  *store.Store
	mailer mailer.Mailer
	logger *zap.Logger
}

func (s *Server) GetStore() *store.Store {
	return s.store
}

func (s *Server) GetMailer() mailer.Mailer {
	return s.mailer
}

func (s *Server) GetLogger() *zap.Logger {
	return s.logger
}

// newBackend picks the document backend from the environment: DB_STRING wins,
// then AWS_S3_BUCKET, otherwise files under DATA_DIR.
func newBackend(ctx context.Context) (kvstore.Backend, error) {
	if dsn := os.Getenv("DB_STRING"); dsn != "" {
		return kvstore.NewPostgresBackend(ctx, dsn)
	}
	if os.Getenv("AWS_S3_BUCKET") != "" {
		return kvstore.NewS3Backend(ctx)
	}
	return kvstore.NewFileBackend(os.Getenv("DATA_DIR"))
}

func NewServer() *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	backend, err := newBackend(ctx)
	if err != nil {
		logger.Fatal("failed to initialize document backend", zap.Error(err))
	}

	st := store.New(backend, logger)
	st.Load(ctx)

	smtp, err := mailer.NewFromEnv()
	if err != nil {
		// The rest of the app works without mail; the relay endpoint answers
		// 500 until SMTP is configured.
		logger.Warn("email relay not configured", zap.Error(err))
	}

	NewServer := &Server{
		port:   port,
		store:  st,
		logger: logger,
	}
	if smtp != nil {
		NewServer.mailer = smtp
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", NewServer.port),
		Handler:      NewServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}

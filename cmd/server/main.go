package main

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	chatservice "github.com/yuizumi/chatspace/internal/chat/service"
	"github.com/yuizumi/chatspace/internal/common/clock"
	"github.com/yuizumi/chatspace/internal/common/config"
	"github.com/yuizumi/chatspace/internal/common/db"
	commonhttp "github.com/yuizumi/chatspace/internal/common/http"
	"github.com/yuizumi/chatspace/internal/common/httpmetrics"
	"github.com/yuizumi/chatspace/internal/common/id"
	"github.com/yuizumi/chatspace/internal/common/logger"
	srv "github.com/yuizumi/chatspace/internal/common/server"
	"github.com/yuizumi/chatspace/internal/graphql"
	msgrepo "github.com/yuizumi/chatspace/internal/message/repository"
	"github.com/yuizumi/chatspace/internal/pubsub"
	userrepo "github.com/yuizumi/chatspace/internal/user/repository"
)

func main() {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		fallback, _ := logger.New("", "server", "INFO")
		fallback.Fatalf("failed to load config: %v", err)
	}

	log, err := logger.New(cfg.LogDir, "server", cfg.LogLevel)
	if err != nil {
		fallback, _ := logger.New("", "server", "INFO")
		fallback.Fatalf("failed to initialize logger: %v", err)
	}

	pool, err := db.NewPool(log, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to initialize database pool: %v", err)
	}
	defer pool.Close()

	db.StartPoolMetrics(pool, 30*time.Second)

	bootCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.EnsureSchema(bootCtx, pool); err != nil {
		log.Fatalf("failed to bootstrap schema: %v", err)
	}

	bus := pubsub.NewBus(cfg.EventBufferSize)

	svc := chatservice.NewChatService(chatservice.ChatServiceDeps{
		Users:    userrepo.NewPgRepository(pool),
		Messages: msgrepo.NewPgRepository(pool),
		Bus:      bus,
		IDs:      id.NewUUIDGenerator(),
		Clock:    clock.NewRealClock(),
		Tx:       db.NewPgTxManager(pool, cfg.RequestTimeout),
		Log:      log,
	})

	schema, err := graphql.ParseSchema(graphql.NewResolver(svc, bus))
	if err != nil {
		log.Fatalf("failed to parse schema: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", graphql.NewHandler(schema))
	mux.Handle("/graphql/ws", graphql.NewSubscriptionHandler(schema))
	mux.Handle("/healthz", commonhttp.HealthHandler())
	mux.Handle("/metrics", promhttp.Handler())

	recovery := commonhttp.RecoveryMiddleware(log)
	handler := recovery(commonhttp.TraceIDMiddleware(httpmetrics.Wrap(mux)))

	server := srv.New(srv.DefaultConfig(cfg.HTTPPort), handler)
	srv.StartWithGracefulShutdown(server, log, "chatspace")
}

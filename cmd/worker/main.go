// Worker assíncrono que consome votos da fila, aplica no Postgres e mantém métricas expostas.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelojr/painel-eleicoes/internal/app/worker"
	"github.com/marcelojr/painel-eleicoes/internal/domain"
	"github.com/marcelojr/painel-eleicoes/internal/platform/clock"
	"github.com/marcelojr/painel-eleicoes/internal/platform/config"
	"github.com/marcelojr/painel-eleicoes/internal/platform/health"
	"github.com/marcelojr/painel-eleicoes/internal/platform/ids"
	"github.com/marcelojr/painel-eleicoes/internal/platform/logger"
	"github.com/marcelojr/painel-eleicoes/internal/platform/migrations"
	postgresstorage "github.com/marcelojr/painel-eleicoes/internal/platform/storage/postgres"
	redisstorage "github.com/marcelojr/painel-eleicoes/internal/platform/storage/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuracao invalida", "err", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	db, err := postgresstorage.Open(ctx, postgresstorage.Options{
		DSN:          cfg.PostgresDSN(),
		MaxOpenConns: cfg.PostgresMaxConns,
	})
	if err != nil {
		logger.Fatal("falha ao conectar no postgres", "err", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("falha ao resgatar sql.DB", "err", err)
	}
	defer sqlDB.Close()

	if cfg.AutoMigrate {
		if err := migrations.Run(db); err != nil {
			logger.Fatal("falha na migracao automatica", "err", err)
		}
	}

	redisClient, err := redisstorage.NewClient(ctx, redisstorage.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	fila := redisstorage.NewFila(redisClient, cfg.FilaKey)
	notificador := redisstorage.NewNotificador(redisClient, cfg.NotificacaoCanal)
	clockSystem := clock.NewSystemClock()
	checker := health.NewChecker(
		health.SQLProbe("postgres", sqlDB),
		health.RedisProbe("redis", redisClient),
	)

	if cfg.WorkerMetricsAddress != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			mux.HandleFunc("/healthz", health.LiveHandler())
			mux.HandleFunc("/readyz", checker.ReadyHandler())
			logger.Info("worker metrics ouvindo", "addr", cfg.WorkerMetricsAddress)
			if err := http.ListenAndServe(cfg.WorkerMetricsAddress, mux); err != nil {
				logger.Error("erro no servidor de metrics do worker", "err", err)
			}
		}()
	}

	votes := postgresstorage.NewVoteRepository(db, ids.NewGenerator(), clockSystem)
	processor := worker.NewVoteProcessor(votes, fila, notificador, clockSystem, worker.Options{
		MaxRetries: cfg.WorkerMaxRetries,
		Backoff:    cfg.WorkerRetryBackoff,
	})

	if pendentes, err := fila.Pendentes(ctx); err == nil {
		logger.Info("worker iniciado, aguardando votos", "pendentes", pendentes)
	}

	err = fila.ConsumirVotos(ctx, func(ctx context.Context, voto domain.Vote) error {
		// Um voto com problema não derruba o consumo da fila.
		if err := processor.Process(ctx, voto); err != nil {
			logger.Error("erro ao processar voto", "voto", voto.ID, "eleicao", voto.ElectionID, "err", err)
		}
		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		logger.Fatal("worker finalizado com erro", "err", err)
	}

	logger.Info("worker finalizado")
}

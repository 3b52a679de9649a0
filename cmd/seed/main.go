// Carga inicial: aplica as migrations e grava as eleições de exemplo quando o banco está vazio.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/marcelojr/painel-eleicoes/internal/app/seed"
	"github.com/marcelojr/painel-eleicoes/internal/platform/clock"
	"github.com/marcelojr/painel-eleicoes/internal/platform/config"
	"github.com/marcelojr/painel-eleicoes/internal/platform/ids"
	"github.com/marcelojr/painel-eleicoes/internal/platform/logger"
	"github.com/marcelojr/painel-eleicoes/internal/platform/migrations"
	postgresstorage "github.com/marcelojr/painel-eleicoes/internal/platform/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuracao invalida", "err", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	db, err := postgresstorage.Open(ctx, postgresstorage.Options{DSN: cfg.PostgresDSN()})
	if err != nil {
		logger.Fatal("falha ao conectar no postgres", "err", err)
	}
	defer postgresstorage.Close(db)

	if err := migrations.Run(db); err != nil {
		logger.Fatal("falha na migracao", "err", err)
	}

	data := seed.SampleData
	if cfg.SeedFile != "" {
		data, err = os.ReadFile(cfg.SeedFile)
		if err != nil {
			logger.Fatal("falha ao ler arquivo de seed", "arquivo", cfg.SeedFile, "err", err)
		}
	}

	repo := postgresstorage.NewElectionRepository(db, ids.NewGenerator(), clock.NewSystemClock())
	n, err := seed.New(repo, logger.L()).Run(ctx, data)
	if err != nil {
		logger.Fatal("falha na carga de exemplo", "criadas", n, "err", err)
	}
	logger.Info("carga concluida", "criadas", n)
}

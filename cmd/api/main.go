// Executável principal da API: carrega a configuração, inicializa dependências e sobe o servidor HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/marcelojr/painel-eleicoes/internal/app/access"
	"github.com/marcelojr/painel-eleicoes/internal/app/httpapi"
	"github.com/marcelojr/painel-eleicoes/internal/app/voting"
	"github.com/marcelojr/painel-eleicoes/internal/domain"
	"github.com/marcelojr/painel-eleicoes/internal/platform/antifraude"
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

	if err := cfg.ValidateAuth(); err != nil {
		logger.Fatal("configuracao de autenticacao invalida", "err", err)
	}

	db, err := postgresstorage.Open(ctx, postgresstorage.Options{
		DSN:          cfg.PostgresDSN(),
		MaxOpenConns: cfg.PostgresMaxConns,
		MaxIdleConns: cfg.PostgresMaxConns / 2,
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

	// Redis guarda revogação de sessões, contadores de login, fila e notificações.
	redisClient, err := redisstorage.NewClient(ctx, redisstorage.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	clockSystem := clock.NewSystemClock()
	idGen := ids.NewGenerator()

	elections := postgresstorage.NewElectionRepository(db, idGen, clockSystem)
	votes := postgresstorage.NewVoteRepository(db, idGen, clockSystem)
	sessoes := redisstorage.NewSessoes(redisClient, cfg.SessoesKeyPrefix)
	notificador := redisstorage.NewNotificador(redisClient, cfg.NotificacaoCanal)

	var antifraudeSvc domain.Antifraude = antifraude.NewNoop()
	if cfg.LoginRateLimitEnabled {
		contador := redisstorage.NewContador(redisClient, cfg.ContadorKeyPrefix)
		antifraudeSvc = antifraude.NewLoginLimiter(contador, cfg.LoginRateLimitMax, cfg.LoginRateLimitWindow, "login")
	}

	hash := cfg.AdminPasswordHash
	if hash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH ausente, gerando hash a partir de ADMIN_PASSWORD")
		hash, err = access.HashPassword(cfg.AdminPassword, bcrypt.DefaultCost)
		if err != nil {
			logger.Fatal("falha ao gerar hash da senha do administrador", "err", err)
		}
	}

	auth := access.NewAuthenticator(
		[]access.Account{{Email: cfg.AdminEmail, PasswordHash: hash}},
		[]byte(cfg.AuthJWTSecret),
		cfg.SessionTTL,
		antifraudeSvc,
		sessoes,
		clockSystem,
	)
	gate := access.NewGate(sessoes, clockSystem)

	// Sem fila o voto é gravado na própria requisição.
	var fila domain.Fila
	if cfg.VoteQueueEnabled {
		fila = redisstorage.NewFila(redisClient, cfg.FilaKey)
	}

	servico := voting.NewService(
		elections,
		votes,
		gate,
		fila,
		notificador,
		clockSystem,
		idGen,
		cfg.RecentVotesLimit,
	)

	checker := health.NewChecker(
		health.SQLProbe("postgres", sqlDB),
		health.RedisProbe("redis", redisClient),
	)

	api := httpapi.New(servico, auth, gate, logger.L(), httpapi.Options{
		LoginURL:     cfg.LoginURL,
		CookieName:   cfg.SessionCookieName,
		CookieSecure: cfg.CookieSecure,
		AsyncVotes:   cfg.VoteQueueEnabled,
		RecentLimit:  cfg.RecentVotesLimit,
		Ready:        checker.ReadyHandler(),
	})
	srv := api.Server(cfg.HTTPAddress)

	go func() {
		logger.Info("api ouvindo", "addr", cfg.HTTPAddress, "fila", cfg.VoteQueueEnabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("erro no servidor", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("encerrando api")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("falha no desligamento gracioso", "err", err)
	}
}

package antifraude

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
	redisstore "github.com/marcelojr/painel-eleicoes/internal/platform/storage/redis"
)

func novoLimiter(t *testing.T, limit int, window time.Duration) (*LoginLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLoginLimiter(redisstore.NewContador(client, "contador"), limit, window, "login"), mr
}

func TestLoginLimiter_QuandoTentativasAtingemLimite_DeveBloquear(t *testing.T) {
	limiter, mr := novoLimiter(t, 2, time.Minute)
	tentativa := domain.LoginAttempt{Email: "admin@voting.com", RemoteIP: "200.1.1.1"}
	ctx := context.Background()

	require.NoError(t, limiter.Verificar(ctx, tentativa))
	require.NoError(t, limiter.RegistrarFalha(ctx, tentativa))
	require.NoError(t, limiter.Verificar(ctx, tentativa))
	require.NoError(t, limiter.RegistrarFalha(ctx, tentativa))

	err := limiter.Verificar(ctx, tentativa)
	assert.True(t, errors.Is(err, ErrRateLimitExceeded))

	key := "contador:" + limiter.buildKey(tentativa)
	assert.Greater(t, mr.TTL(key), time.Duration(0))
}

func TestLoginLimiter_QuandoTentativasParalelasAntesDaFalha_DevePermitirSomenteLimite(t *testing.T) {
	limiter, _ := novoLimiter(t, 3, time.Minute)
	tentativa := domain.LoginAttempt{Email: "admin@voting.com", RemoteIP: "200.9.9.9"}
	ctx := context.Background()

	// Nenhuma falha registrada ainda: todas as verificações chegam juntas.
	var (
		wg        sync.WaitGroup
		liberadas atomic.Int64
		barradas  atomic.Int64
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch err := limiter.Verificar(ctx, tentativa); {
			case err == nil:
				liberadas.Add(1)
			case errors.Is(err, ErrRateLimitExceeded):
				barradas.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(3), liberadas.Load())
	assert.Equal(t, int64(7), barradas.Load())
}

func TestLoginLimiter_QuandoJanelaExpira_DeveLiberar(t *testing.T) {
	window := 30 * time.Second
	limiter, mr := novoLimiter(t, 1, window)
	tentativa := domain.LoginAttempt{Email: "admin@voting.com", RemoteIP: "200.2.2.2"}
	ctx := context.Background()

	require.NoError(t, limiter.Verificar(ctx, tentativa))
	require.ErrorIs(t, limiter.Verificar(ctx, tentativa), ErrRateLimitExceeded)

	mr.FastForward(window + time.Second)

	assert.NoError(t, limiter.Verificar(ctx, tentativa))
}

func TestLoginLimiter_QuandoLoginBemSucedido_DeveZerarContagem(t *testing.T) {
	limiter, mr := novoLimiter(t, 2, time.Minute)
	tentativa := domain.LoginAttempt{Email: "admin@voting.com", RemoteIP: "10.0.0.1"}
	ctx := context.Background()

	require.NoError(t, limiter.Verificar(ctx, tentativa))
	require.NoError(t, limiter.Verificar(ctx, tentativa))
	require.NoError(t, limiter.Limpar(ctx, tentativa))
	assert.False(t, mr.Exists("contador:"+limiter.buildKey(tentativa)))

	assert.NoError(t, limiter.Verificar(ctx, tentativa))
}

func TestLoginLimiter_QuandoEmailComCaixaDiferente_DeveContarJunto(t *testing.T) {
	limiter, _ := novoLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, limiter.Verificar(ctx, domain.LoginAttempt{Email: "Admin@Voting.com", RemoteIP: "10.0.0.1"}))

	err := limiter.Verificar(ctx, domain.LoginAttempt{Email: "admin@voting.com ", RemoteIP: "10.0.0.1"})
	assert.ErrorIs(t, err, ErrRateLimitExceeded)
}

func TestLoginLimiter_QuandoConfiguracaoInvalida_DevePermitir(t *testing.T) {
	limiter := NewLoginLimiter(nil, 0, 0, "")
	tentativa := domain.LoginAttempt{Email: "a@b.c"}
	ctx := context.Background()

	assert.NoError(t, limiter.RegistrarFalha(ctx, tentativa))
	assert.NoError(t, limiter.Verificar(ctx, tentativa))
	assert.NoError(t, limiter.Limpar(ctx, tentativa))
}

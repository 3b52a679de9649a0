// Pacote antifraude controla tentativas de login suspeitas (janela de falhas no Redis e modo noop).
package antifraude

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
)

var ErrRateLimitExceeded = errors.New("limite de tentativas de login atingido")

// LoginLimiter aceita no máximo `limit` tentativas por email+IP dentro da janela.
// Toda tentativa conta ao passar por Verificar; só um login bem-sucedido zera a contagem.
type LoginLimiter struct {
	contador  domain.Contador
	limit     int
	window    time.Duration
	keyPrefix string
}

func NewLoginLimiter(contador domain.Contador, limit int, window time.Duration, prefix string) *LoginLimiter {
	if prefix == "" {
		prefix = "login"
	}
	return &LoginLimiter{
		contador:  contador,
		limit:     limit,
		window:    window,
		keyPrefix: prefix,
	}
}

func (l *LoginLimiter) Verificar(ctx context.Context, tentativa domain.LoginAttempt) error {
	if l.disabled() {
		return nil
	}

	// INCR é atômico: requisições paralelas recebem contagens distintas.
	count, err := l.contador.IncrementarJanela(ctx, l.buildKey(tentativa), l.window)
	if err != nil {
		return fmt.Errorf("antifraude: falha ao registrar tentativa: %w", err)
	}
	if count > int64(l.limit) {
		return ErrRateLimitExceeded
	}
	return nil
}

// RegistrarFalha não incrementa de novo: a tentativa já foi contada em Verificar.
func (l *LoginLimiter) RegistrarFalha(context.Context, domain.LoginAttempt) error {
	return nil
}

func (l *LoginLimiter) Limpar(ctx context.Context, tentativa domain.LoginAttempt) error {
	if l.disabled() {
		return nil
	}
	if err := l.contador.Zerar(ctx, l.buildKey(tentativa)); err != nil {
		return fmt.Errorf("antifraude: falha ao limpar tentativas: %w", err)
	}
	return nil
}

// Configurações inválidas caem no modo permissivo.
func (l *LoginLimiter) disabled() bool {
	return l.contador == nil || l.limit <= 0 || l.window <= 0
}

func (l *LoginLimiter) buildKey(tentativa domain.LoginAttempt) string {
	// Hash evita gravar email e IP em claro no Redis.
	base := fmt.Sprintf("%s|%s", strings.ToLower(strings.TrimSpace(tentativa.Email)), tentativa.RemoteIP)
	hash := sha1.Sum([]byte(base))
	return fmt.Sprintf("%s:%s", l.keyPrefix, hex.EncodeToString(hash[:]))
}

var _ domain.Antifraude = (*LoginLimiter)(nil)

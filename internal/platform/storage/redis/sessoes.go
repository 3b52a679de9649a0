package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
)

// Sessoes guarda ids de sessões encerradas até o token original expirar.
type Sessoes struct {
	client *redis.Client
	prefix string
}

func NewSessoes(client *redis.Client, prefix string) *Sessoes {
	if prefix == "" {
		prefix = "sessao:revogada"
	}
	return &Sessoes{client: client, prefix: prefix}
}

func (s *Sessoes) Revogar(ctx context.Context, sessionID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(sessionID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis sessoes: falha ao revogar: %w", err)
	}
	return nil
}

func (s *Sessoes) Revogada(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis sessoes: falha ao consultar: %w", err)
	}
	return n > 0, nil
}

func (s *Sessoes) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

var _ domain.SessionStore = (*Sessoes)(nil)

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
)

// Contador mantém contagens com expiração em chaves prefixadas.
type Contador struct {
	client *redis.Client
	prefix string
}

func NewContador(client *redis.Client, prefix string) *Contador {
	return &Contador{
		client: client,
		prefix: prefix,
	}
}

// IncrementarJanela soma 1 e, no primeiro incremento, define a expiração da janela.
func (c *Contador) IncrementarJanela(ctx context.Context, chave string, janela time.Duration) (int64, error) {
	key := c.key(chave)
	total, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis contador: incr %s: %w", key, err)
	}
	if total == 1 && janela > 0 {
		if err := c.client.Expire(ctx, key, janela).Err(); err != nil {
			return 0, fmt.Errorf("redis contador: expire %s: %w", key, err)
		}
	}
	return total, nil
}

func (c *Contador) Zerar(ctx context.Context, chave string) error {
	return c.client.Del(ctx, c.key(chave)).Err()
}

func (c *Contador) key(chave string) string {
	if c.prefix == "" {
		return chave
	}
	return fmt.Sprintf("%s:%s", c.prefix, chave)
}

var _ domain.Contador = (*Contador)(nil)

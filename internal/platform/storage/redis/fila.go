// Pacote redis implementa fila de votos, contadores, revogação de sessões e notificações sobre Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
)

// Fila usa uma lista Redis (LPUSH/BRPOP) para votos aguardando gravação.
type Fila struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

func NewFila(client *redis.Client, key string) *Fila {
	return &Fila{
		client:  client,
		key:     key,
		timeout: 5 * time.Second,
	}
}

func (f *Fila) PublicarVoto(ctx context.Context, voto domain.Vote) error {
	payload, err := json.Marshal(voto)
	if err != nil {
		return fmt.Errorf("redis fila: falha serializando voto: %w", err)
	}
	if err := f.client.LPush(ctx, f.key, payload).Err(); err != nil {
		return fmt.Errorf("redis fila: falha ao enfileirar voto: %w", err)
	}
	return nil
}

// ConsumirVotos bloqueia até o contexto terminar ou o handler devolver erro.
func (f *Fila) ConsumirVotos(ctx context.Context, handler func(context.Context, domain.Vote) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		res, err := f.client.BRPop(ctx, f.timeout, f.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("redis fila: falha ao consumir voto: %w", err)
		}

		if len(res) != 2 {
			continue
		}

		var voto domain.Vote
		if err := json.Unmarshal([]byte(res[1]), &voto); err != nil {
			return fmt.Errorf("redis fila: payload invalido: %w", err)
		}

		if err := handler(ctx, voto); err != nil {
			return err
		}
	}
}

// Pendentes devolve o tamanho atual da fila.
func (f *Fila) Pendentes(ctx context.Context) (int64, error) {
	return f.client.LLen(ctx, f.key).Result()
}

var _ domain.Fila = (*Fila)(nil)

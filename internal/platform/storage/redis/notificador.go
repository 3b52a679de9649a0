package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
)

// Notificador propaga alterações das coleções via pub/sub para reagregar painéis ao vivo.
type Notificador struct {
	client  *redis.Client
	channel string
}

func NewNotificador(client *redis.Client, channel string) *Notificador {
	return &Notificador{client: client, channel: channel}
}

func (n *Notificador) Publicar(ctx context.Context, change domain.Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("redis notificador: falha serializando alteracao: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis notificador: falha ao publicar: %w", err)
	}
	return nil
}

// Assinar entrega cada alteração ao handler até o contexto terminar ou o handler falhar.
func (n *Notificador) Assinar(ctx context.Context, handler func(context.Context, domain.Change) error) error {
	sub := n.client.Subscribe(ctx, n.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis notificador: falha ao assinar %s: %w", n.channel, err)
	}

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("redis notificador: canal %s encerrado", n.channel)
			}
			var change domain.Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				continue
			}
			if err := handler(ctx, change); err != nil {
				return err
			}
		}
	}
}

var _ domain.Notificador = (*Notificador)(nil)

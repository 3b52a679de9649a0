// Pacote worker contém a gravação assíncrona dos votos que chegam pela fila Redis.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
	"github.com/marcelojr/painel-eleicoes/internal/platform/logger"
	"github.com/marcelojr/painel-eleicoes/internal/platform/metrics"
)

var (
	// ErrVoteRejected indica voto recusado pelas regras (eleição encerrada, candidato inexistente); não é repetido.
	ErrVoteRejected = errors.New("voto recusado")
	// ErrVoteRequeued indica que as tentativas se esgotaram e o voto voltou para a fila.
	ErrVoteRequeued = errors.New("voto reenfileirado")
)

type Options struct {
	MaxRetries int
	Backoff    time.Duration
}

// VoteProcessor aplica o voto de forma transacional; como Cast é idempotente pelo id, reprocessar é seguro.
type VoteProcessor struct {
	votes       domain.VoteRepository
	fila        domain.Fila
	notificador domain.Notificador
	clock       domain.Clock
	opts        Options
}

func NewVoteProcessor(votes domain.VoteRepository, fila domain.Fila, notificador domain.Notificador, clock domain.Clock, opts Options) *VoteProcessor {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &VoteProcessor{
		votes:       votes,
		fila:        fila,
		notificador: notificador,
		clock:       clock,
		opts:        opts,
	}
}

func (p *VoteProcessor) Process(ctx context.Context, voto domain.Vote) error {
	start := time.Now()

	if voto.Timestamp.IsZero() {
		voto.Timestamp = p.clock.Agora()
	}

	var lastErr error
	for attempt := 0; attempt <= p.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.IncVoteRetry("attempt")
			if err := wait(ctx, p.opts.Backoff*time.Duration(attempt)); err != nil {
				return err
			}
		}

		_, err := p.votes.Cast(ctx, voto)
		if err == nil {
			metrics.IncVoteProcessed()
			metrics.ObserveProcessingDuration(time.Since(start).Seconds())
			p.notify(ctx, voto)
			return nil
		}
		if !errors.Is(err, domain.ErrStorage) {
			return fmt.Errorf("%w: voto %s: %w", ErrVoteRejected, voto.ID, err)
		}
		lastErr = err
	}

	if p.fila == nil {
		return fmt.Errorf("worker: gravar voto %s: %w", voto.ID, lastErr)
	}
	if err := p.fila.PublicarVoto(ctx, voto); err != nil {
		return fmt.Errorf("worker: reenfileirar voto %s: %w (falha original: %w)", voto.ID, err, lastErr)
	}
	metrics.IncVoteRetry("requeue")
	return fmt.Errorf("%w: voto %s: %w", ErrVoteRequeued, voto.ID, lastErr)
}

func (p *VoteProcessor) notify(ctx context.Context, voto domain.Vote) {
	if p.notificador == nil {
		return
	}
	change := domain.Change{Collection: domain.CollectionVotes, ElectionID: voto.ElectionID, Kind: "cast"}
	if err := p.notificador.Publicar(ctx, change); err != nil {
		logger.Warn("falha ao publicar alteracao", "voto", voto.ID, "error", err)
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

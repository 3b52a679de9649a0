// Pacote voting implementa o serviço administrativo de eleições: escrita validada, votação e painel agregado.
package voting

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelojr/painel-eleicoes/internal/app/access"
	"github.com/marcelojr/painel-eleicoes/internal/app/dashboard"
	"github.com/marcelojr/painel-eleicoes/internal/app/lifecycle"
	"github.com/marcelojr/painel-eleicoes/internal/domain"
	"github.com/marcelojr/painel-eleicoes/internal/platform/ids"
	"github.com/marcelojr/painel-eleicoes/internal/platform/metrics"
)

const defaultRecentVotes = 5

// Gate é satisfeito por *access.Gate.
type Gate interface {
	Require(ctx context.Context) (access.Session, error)
}

// Service exige sessão de administrador em toda chamada e delega persistência a repositórios/fila.
type Service struct {
	elections   domain.ElectionRepository
	votes       domain.VoteRepository
	gate        Gate
	validator   *lifecycle.Validator
	fila        domain.Fila
	notificador domain.Notificador
	clock       domain.Clock
	ids         domain.IDGenerator
	recentVotes int
}

// NewService aceita fila e notificador nulos: sem fila o voto é gravado na hora; sem notificador não há painel ao vivo.
func NewService(
	elections domain.ElectionRepository,
	votes domain.VoteRepository,
	gate Gate,
	fila domain.Fila,
	notificador domain.Notificador,
	clock domain.Clock,
	idsGen domain.IDGenerator,
	recentVotes int,
) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	if recentVotes <= 0 {
		recentVotes = defaultRecentVotes
	}
	return &Service{
		elections:   elections,
		votes:       votes,
		gate:        gate,
		validator:   lifecycle.NewValidator(clock),
		fila:        fila,
		notificador: notificador,
		clock:       clock,
		ids:         idsGen,
		recentVotes: recentVotes,
	}
}

func (s *Service) CreateElection(ctx context.Context, in domain.ElectionInput) (domain.Election, error) {
	if _, err := s.gate.Require(ctx); err != nil {
		return domain.Election{}, err
	}

	e, err := s.validator.ValidateCreate(in)
	if err != nil {
		return domain.Election{}, err
	}

	id, err := s.elections.Create(ctx, e)
	if err != nil {
		return domain.Election{}, err
	}

	created, err := s.elections.FindByID(ctx, id)
	if err != nil {
		return domain.Election{}, err
	}

	s.notify(ctx, domain.CollectionElections, id, ChangeCreated)
	return dashboard.Enrich(created), nil
}

func (s *Service) ListElections(ctx context.Context) ([]domain.Election, error) {
	if _, err := s.gate.Require(ctx); err != nil {
		return nil, err
	}

	list, err := s.elections.List(ctx)
	if err != nil {
		return nil, err
	}
	return dashboard.EnrichAll(dashboard.Dedup(list)), nil
}

func (s *Service) GetElection(ctx context.Context, id domain.ElectionID) (domain.Election, error) {
	if _, err := s.gate.Require(ctx); err != nil {
		return domain.Election{}, err
	}

	e, err := s.elections.FindByID(ctx, id)
	if err != nil {
		return domain.Election{}, err
	}
	return dashboard.Enrich(e), nil
}

// UpdateElection valida o patch contra o estado atual antes de gravar.
func (s *Service) UpdateElection(ctx context.Context, id domain.ElectionID, patch domain.ElectionPatch) (domain.Election, error) {
	if _, err := s.gate.Require(ctx); err != nil {
		return domain.Election{}, err
	}

	current, err := s.elections.FindByID(ctx, id)
	if err != nil {
		return domain.Election{}, err
	}

	normalized, err := s.validator.ValidateUpdate(current, patch)
	if err != nil {
		return domain.Election{}, err
	}

	if err := s.elections.Update(ctx, id, normalized); err != nil {
		return domain.Election{}, err
	}

	updated, err := s.elections.FindByID(ctx, id)
	if err != nil {
		return domain.Election{}, err
	}

	s.notify(ctx, domain.CollectionElections, id, ChangeUpdated)
	return dashboard.Enrich(updated), nil
}

func (s *Service) DeleteElection(ctx context.Context, id domain.ElectionID) error {
	if _, err := s.gate.Require(ctx); err != nil {
		return err
	}

	if err := s.elections.Delete(ctx, id); err != nil {
		return err
	}

	s.notify(ctx, domain.CollectionElections, id, ChangeDeleted)
	return nil
}

func (s *Service) ListActive(ctx context.Context) ([]domain.Election, error) {
	if _, err := s.gate.Require(ctx); err != nil {
		return nil, err
	}

	list, err := s.elections.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return dashboard.EnrichAll(dashboard.Dedup(list)), nil
}

// CastVote grava o voto na hora ou, no modo assíncrono, valida e publica na fila para o worker.
func (s *Service) CastVote(ctx context.Context, electionID domain.ElectionID, candidateID domain.CandidateID) (domain.VoteID, error) {
	if _, err := s.gate.Require(ctx); err != nil {
		metrics.ObserveVoteRequest("unauthorized")
		return "", err
	}

	if s.fila != nil {
		return s.enqueueVote(ctx, electionID, candidateID)
	}

	v, err := s.votes.Cast(ctx, domain.Vote{ElectionID: electionID, CandidateID: candidateID})
	if err != nil {
		metrics.ObserveVoteRequest("rejected")
		return "", err
	}

	metrics.ObserveVoteRequest("accepted")
	s.notify(ctx, domain.CollectionVotes, electionID, ChangeVoteCast)
	return v.ID, nil
}

func (s *Service) enqueueVote(ctx context.Context, electionID domain.ElectionID, candidateID domain.CandidateID) (domain.VoteID, error) {
	e, err := s.elections.FindByID(ctx, electionID)
	if err != nil {
		metrics.ObserveVoteRequest("rejected")
		return "", err
	}
	if status, _ := domain.ParseStatus(string(e.Status)); status != domain.StatusActive {
		metrics.ObserveVoteRequest("rejected")
		return "", fmt.Errorf("%w: eleicao %s esta %s", domain.ErrInvalidState, e.ID, e.Status)
	}
	if _, ok := e.FindCandidate(candidateID); !ok {
		metrics.ObserveVoteRequest("rejected")
		return "", fmt.Errorf("%w: candidato %d na eleicao %s", domain.ErrNotFound, candidateID, electionID)
	}
	if e.TotalVoters > 0 && e.TotalVotes >= e.TotalVoters {
		metrics.ObserveVoteRequest("rejected")
		return "", fmt.Errorf("%w: eleicao %s nao aceita mais votos", domain.ErrInvalidState, e.ID)
	}

	v := domain.Vote{
		ID:          domain.VoteID(s.ids.New()),
		ElectionID:  electionID,
		CandidateID: candidateID,
		Timestamp:   s.clock.Agora(),
	}
	if err := s.fila.PublicarVoto(ctx, v); err != nil {
		metrics.ObserveVoteRequest("error")
		return "", fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	metrics.ObserveVoteRequest("queued")
	return v.ID, nil
}

// VotesByElection falha com NotFound quando a eleição não existe, mesmo sem votos.
func (s *Service) VotesByElection(ctx context.Context, id domain.ElectionID) ([]domain.Vote, error) {
	if _, err := s.gate.Require(ctx); err != nil {
		return nil, err
	}

	if _, err := s.elections.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.votes.ListByElection(ctx, id)
}

func (s *Service) RecentVotes(ctx context.Context, limit int) ([]domain.Vote, error) {
	if _, err := s.gate.Require(ctx); err != nil {
		return nil, err
	}
	return s.votes.ListRecent(ctx, limit)
}

func (s *Service) Dashboard(ctx context.Context) (domain.DashboardSnapshot, error) {
	if _, err := s.gate.Require(ctx); err != nil {
		return domain.DashboardSnapshot{}, err
	}
	return s.snapshot(ctx)
}

// WatchDashboard entrega um painel imediatamente e outro a cada alteração notificada.
// Sem notificador, retorna após o primeiro envio.
func (s *Service) WatchDashboard(ctx context.Context, fn func(domain.DashboardSnapshot) error) error {
	if _, err := s.gate.Require(ctx); err != nil {
		return err
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	if err := fn(snap); err != nil {
		return err
	}

	if s.notificador == nil {
		return nil
	}

	return s.notificador.Assinar(ctx, func(ctx context.Context, _ domain.Change) error {
		// A sessão pode ter sido encerrada durante a assinatura.
		if _, err := s.gate.Require(ctx); err != nil {
			return err
		}
		snap, err := s.snapshot(ctx)
		if err != nil {
			return err
		}
		return fn(snap)
	})
}

func (s *Service) snapshot(ctx context.Context) (domain.DashboardSnapshot, error) {
	start := time.Now()

	elections, err := s.elections.List(ctx)
	if err != nil {
		return domain.DashboardSnapshot{}, err
	}
	recent, err := s.votes.ListRecent(ctx, s.recentVotes)
	if err != nil {
		return domain.DashboardSnapshot{}, err
	}

	snap := dashboard.Compute(elections, recent, s.clock.Agora())
	metrics.ObserveDashboardDuration(time.Since(start).Seconds())
	return snap, nil
}

var _ domain.ElectionService = (*Service)(nil)

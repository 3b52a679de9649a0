package domain

import (
	"context"
	"time"
)

type ElectionRepository interface {
	Create(ctx context.Context, e Election) (ElectionID, error)
	List(ctx context.Context) ([]Election, error)
	FindByID(ctx context.Context, id ElectionID) (Election, error)
	Update(ctx context.Context, id ElectionID, patch ElectionPatch) error
	Delete(ctx context.Context, id ElectionID) error
	ListActive(ctx context.Context) ([]Election, error)
}

type VoteRepository interface {
	Cast(ctx context.Context, v Vote) (Vote, error)
	ListByElection(ctx context.Context, id ElectionID) ([]Vote, error)
	ListRecent(ctx context.Context, limit int) ([]Vote, error)
}

type Contador interface {
	IncrementarJanela(ctx context.Context, chave string, janela time.Duration) (int64, error)
	Zerar(ctx context.Context, chave string) error
}

type Fila interface {
	PublicarVoto(ctx context.Context, voto Vote) error
	ConsumirVotos(ctx context.Context, handler func(context.Context, Vote) error) error
}

type Notificador interface {
	Publicar(ctx context.Context, change Change) error
	Assinar(ctx context.Context, handler func(context.Context, Change) error) error
}

type SessionStore interface {
	Revogar(ctx context.Context, sessionID string, ttl time.Duration) error
	Revogada(ctx context.Context, sessionID string) (bool, error)
}

type Antifraude interface {
	Verificar(ctx context.Context, tentativa LoginAttempt) error
	RegistrarFalha(ctx context.Context, tentativa LoginAttempt) error
	Limpar(ctx context.Context, tentativa LoginAttempt) error
}

type Clock interface {
	Agora() time.Time
}

type IDGenerator interface {
	New() string
}

type ElectionService interface {
	CreateElection(ctx context.Context, in ElectionInput) (Election, error)
	ListElections(ctx context.Context) ([]Election, error)
	GetElection(ctx context.Context, id ElectionID) (Election, error)
	UpdateElection(ctx context.Context, id ElectionID, patch ElectionPatch) (Election, error)
	DeleteElection(ctx context.Context, id ElectionID) error
	ListActive(ctx context.Context) ([]Election, error)
	CastVote(ctx context.Context, electionID ElectionID, candidateID CandidateID) (VoteID, error)
	VotesByElection(ctx context.Context, id ElectionID) ([]Vote, error)
	RecentVotes(ctx context.Context, limit int) ([]Vote, error)
	Dashboard(ctx context.Context) (DashboardSnapshot, error)
	WatchDashboard(ctx context.Context, fn func(DashboardSnapshot) error) error
}

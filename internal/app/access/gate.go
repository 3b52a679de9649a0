package access

import (
	"context"
	"fmt"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
)

// Gate responde se o chamador possui uma sessão de administrador válida.
type Gate struct {
	sessions domain.SessionStore
	clock    domain.Clock
}

func NewGate(sessions domain.SessionStore, clock domain.Clock) *Gate {
	return &Gate{sessions: sessions, clock: clock}
}

func (g *Gate) Require(ctx context.Context) (Session, error) {
	s, ok := FromContext(ctx)
	if !ok || s.ID == "" {
		return Session{}, domain.ErrAuthentication
	}
	if s.Role != RoleAdmin {
		return Session{}, fmt.Errorf("%w: perfil %q sem permissao", domain.ErrAuthentication, s.Role)
	}
	if s.ExpiresAt.IsZero() {
		return Session{}, fmt.Errorf("%w: sessao sem validade", domain.ErrAuthentication)
	}
	if !g.clock.Agora().Before(s.ExpiresAt) {
		return Session{}, fmt.Errorf("%w: sessao expirada", domain.ErrAuthentication)
	}

	if g.sessions != nil {
		revogada, err := g.sessions.Revogada(ctx, s.ID)
		if err != nil {
			return Session{}, fmt.Errorf("acesso: consultar revogacao: %w: %w", domain.ErrStorage, err)
		}
		if revogada {
			return Session{}, fmt.Errorf("%w: sessao encerrada", domain.ErrAuthentication)
		}
	}

	return s, nil
}

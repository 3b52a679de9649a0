package antifraude

import (
	"context"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
)

// Noop representa o controle de tentativas desabilitado.
type Noop struct{}

func NewNoop() Noop {
	return Noop{}
}

func (Noop) Verificar(context.Context, domain.LoginAttempt) error {
	return nil
}

func (Noop) RegistrarFalha(context.Context, domain.LoginAttempt) error {
	return nil
}

func (Noop) Limpar(context.Context, domain.LoginAttempt) error {
	return nil
}

var _ domain.Antifraude = Noop{}

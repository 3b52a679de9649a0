// Pacote clock fornece o relógio real usado fora dos testes.
package clock

import (
	"time"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
)

type SystemClock struct{}

func NewSystemClock() SystemClock {
	return SystemClock{}
}

func (SystemClock) Agora() time.Time {
	return time.Now().UTC()
}

// Fixed devolve sempre o mesmo instante; útil para seeds e testes reproduzíveis.
type Fixed struct {
	Instante time.Time
}

func (f Fixed) Agora() time.Time {
	return f.Instante
}

var (
	_ domain.Clock = SystemClock{}
	_ domain.Clock = Fixed{}
)

// Pacote dashboard deriva as estatísticas do painel a partir das eleições e votos já carregados.
// Todas as funções são puras: mesma entrada, mesma saída.
package dashboard

import (
	"strings"
	"time"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
)

// Compute agrega o snapshot completo. computedAt fica fora das estatísticas.
func Compute(elections []domain.Election, recentVotes []domain.Vote, computedAt time.Time) domain.DashboardSnapshot {
	unique := Dedup(elections)

	stats := domain.DashboardStats{
		Elections:   make([]domain.Election, len(unique)),
		RecentVotes: append([]domain.Vote{}, recentVotes...),
	}

	for i, e := range unique {
		stats.TotalVotes += counter(e.TotalVotes)
		stats.TotalCandidates += len(e.Candidates)
		switch {
		case hasStatus(e, domain.StatusActive):
			stats.ActiveElections++
		case hasStatus(e, domain.StatusCompleted):
			stats.CompletedElections++
		}
		stats.Elections[i] = Enrich(e)
	}

	return domain.DashboardSnapshot{Stats: stats, ComputedAt: computedAt}
}

// Dedup remove eleições repetidas pelo id, mantendo a primeira ocorrência na ordem de entrada.
func Dedup(elections []domain.Election) []domain.Election {
	seen := make(map[domain.ElectionID]struct{}, len(elections))
	result := make([]domain.Election, 0, len(elections))
	for _, e := range elections {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		result = append(result, e)
	}
	return result
}

// Turnout devolve votos/eleitores em porcentagem; ok=false quando não há eleitores cadastrados.
func Turnout(e domain.Election) (float64, bool) {
	if e.TotalVoters <= 0 {
		return 0, false
	}
	return float64(counter(e.TotalVotes)) / float64(e.TotalVoters) * 100, true
}

// Enrich devolve uma cópia com percentuais e comparecimento recalculados.
func Enrich(e domain.Election) domain.Election {
	total := counter(e.TotalVotes)

	candidates := make([]domain.Candidate, len(e.Candidates))
	for i, c := range e.Candidates {
		c.Votes = counter(c.Votes)
		c.Percentage = 0
		if total > 0 {
			c.Percentage = float64(c.Votes) / float64(total) * 100
		}
		candidates[i] = c
	}
	e.Candidates = candidates

	e.Turnout = nil
	if t, ok := Turnout(e); ok {
		e.Turnout = &t
	}
	return e
}

func EnrichAll(elections []domain.Election) []domain.Election {
	result := make([]domain.Election, len(elections))
	for i, e := range elections {
		result[i] = Enrich(e)
	}
	return result
}

// counter aplica a política de limpeza: contadores ausentes ou negativos valem zero.
func counter(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

func hasStatus(e domain.Election, s domain.Status) bool {
	return strings.EqualFold(strings.TrimSpace(string(e.Status)), string(s))
}

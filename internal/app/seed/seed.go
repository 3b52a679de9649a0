// Pacote seed carrega eleições de exemplo quando o banco ainda está vazio.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
)

//go:embed sample_elections.json
var SampleData []byte

// Store é o subconjunto do repositório de eleições usado na carga.
type Store interface {
	Count(ctx context.Context) (int64, error)
	Import(ctx context.Context, e domain.Election) (domain.ElectionID, error)
}

// document aceita as variações de nome de campo encontradas nos dados legados.
type document struct {
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Category        string              `json:"category"`
	Constituency    string              `json:"constituency"`
	ConstituencyAlt string              `json:"Constituency"`
	State           string              `json:"state"`
	TotalVoters     int64               `json:"totalVoters"`
	TotalVotes      *int64              `json:"totalVotes"`
	VotesCast       *int64              `json:"votesCast"`
	Status          string              `json:"status"`
	StartDate       string              `json:"startDate"`
	EndDate         string              `json:"endDate"`
	Candidates      []candidateDocument `json:"candidates"`
}

type candidateDocument struct {
	domain.CandidateInput
	Votes int64 `json:"votes"`
}

type Seeder struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Seeder {
	return &Seeder{store: store, logger: logger}
}

// Run importa os documentos somente se não houver nenhuma eleição gravada. Devolve quantas foram criadas.
func (s *Seeder) Run(ctx context.Context, data []byte) (int, error) {
	total, err := s.store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if total > 0 {
		s.logger.Info("dados de exemplo ja existem", "eleicoes", total)
		return 0, nil
	}

	elections, err := Parse(data)
	if err != nil {
		return 0, err
	}

	for i, e := range elections {
		id, err := s.store.Import(ctx, e)
		if err != nil {
			return i, fmt.Errorf("seed: importar %q: %w", e.Title, err)
		}
		s.logger.Info("eleicao de exemplo criada", "id", id, "titulo", e.Title, "votos", e.TotalVotes)
	}
	return len(elections), nil
}

// Parse converte o documento JSON no esquema canônico de eleição.
func Parse(data []byte) ([]domain.Election, error) {
	var docs []document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("seed: documento invalido: %w", err)
	}

	out := make([]domain.Election, 0, len(docs))
	for _, d := range docs {
		e, err := d.normalize()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (d document) normalize() (domain.Election, error) {
	e := domain.Election{
		Title:        strings.TrimSpace(d.Title),
		Description:  strings.TrimSpace(d.Description),
		Constituency: strings.TrimSpace(d.Constituency),
		State:        strings.TrimSpace(d.State),
		TotalVoters:  d.TotalVoters,
		StartDate:    strings.TrimSpace(d.StartDate),
		EndDate:      strings.TrimSpace(d.EndDate),
	}
	if e.Constituency == "" {
		e.Constituency = strings.TrimSpace(d.ConstituencyAlt)
	}

	cat, ok := domain.ParseCategory(d.Category)
	if !ok {
		return domain.Election{}, fmt.Errorf("seed: %q: %w: categoria %q", d.Title, domain.ErrValidation, d.Category)
	}
	e.Category = cat

	e.Status = domain.StatusActive
	if strings.TrimSpace(d.Status) != "" {
		status, ok := domain.ParseStatus(d.Status)
		if !ok {
			return domain.Election{}, fmt.Errorf("seed: %q: %w: status %q", d.Title, domain.ErrValidation, d.Status)
		}
		e.Status = status
	}

	// votes acompanha a mesma ordem das entradas que sobrevivem ao filtro.
	inputs := make([]domain.CandidateInput, 0, len(d.Candidates))
	votes := make([]int64, 0, len(d.Candidates))
	for _, c := range d.Candidates {
		if c.Blank() {
			continue
		}
		inputs = append(inputs, c.CandidateInput)
		votes = append(votes, max(c.Votes, 0))
	}
	e.Candidates = domain.CandidatesFromInput(inputs)
	for i := range e.Candidates {
		e.Candidates[i].Votes = votes[i]
		e.TotalVotes += votes[i]
	}

	// O total declarado precisa bater com a soma dos candidatos.
	declared := d.TotalVotes
	if declared == nil {
		declared = d.VotesCast
	}
	if declared != nil && *declared != e.TotalVotes {
		return domain.Election{}, fmt.Errorf("seed: %q: %w: total declarado %d difere da soma %d", d.Title, domain.ErrValidation, *declared, e.TotalVotes)
	}

	return e, nil
}

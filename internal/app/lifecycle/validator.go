// Pacote lifecycle valida campos e transições de status antes de qualquer escrita de eleição.
package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
)

// Validator usa o clock para definir o "hoje" implícito de startDate.
type Validator struct {
	clock domain.Clock
}

func NewValidator(clock domain.Clock) *Validator {
	return &Validator{clock: clock}
}

// CanTransition implementa a máquina scheduled -> active -> completed. Manter o status é sempre permitido.
func CanTransition(from, to domain.Status) bool {
	if from == to {
		return true
	}
	switch from {
	case domain.StatusScheduled:
		return to == domain.StatusActive
	case domain.StatusActive:
		return to == domain.StatusCompleted
	}
	return false
}

// ValidateCreate devolve a eleição normalizada pronta para o repositório.
func (v *Validator) ValidateCreate(in domain.ElectionInput) (domain.Election, error) {
	verr := &domain.ValidationError{}

	e := domain.Election{
		Title:        in.Title,
		Description:  in.Description,
		Category:     in.Category,
		Constituency: in.Constituency,
		State:        in.State,
		TotalVoters:  in.TotalVoters,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Candidates:   domain.CandidatesFromInput(in.Candidates),
		Status:       domain.StatusActive,
	}

	if strings.TrimSpace(string(in.Status)) != "" {
		status, ok := domain.ParseStatus(string(in.Status))
		switch {
		case !ok:
			verr.Add("status", "valor desconhecido")
		case status == domain.StatusCompleted:
			verr.Add("status", "eleicao nao pode nascer concluida")
		default:
			e.Status = status
		}
	}

	v.checkFields(&e, verr, true)
	if err := verr.OrNil(); err != nil {
		return domain.Election{}, err
	}
	return e, nil
}

// ValidateUpdate aplica o patch sobre a eleição atual, valida o resultado e devolve o patch normalizado.
func (v *Validator) ValidateUpdate(current domain.Election, patch domain.ElectionPatch) (domain.ElectionPatch, error) {
	verr := &domain.ValidationError{}
	merged := current

	if patch.Title != nil {
		merged.Title = *patch.Title
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.Category != nil {
		merged.Category = *patch.Category
	}
	if patch.Constituency != nil {
		merged.Constituency = *patch.Constituency
	}
	if patch.State != nil {
		merged.State = *patch.State
	}
	if patch.TotalVoters != nil {
		merged.TotalVoters = *patch.TotalVoters
	}
	if patch.StartDate != nil {
		merged.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		merged.EndDate = *patch.EndDate
	}

	if patch.Status != nil {
		status, ok := domain.ParseStatus(string(*patch.Status))
		if !ok {
			verr.Add("status", "valor desconhecido")
		} else {
			from, _ := domain.ParseStatus(string(current.Status))
			if !CanTransition(from, status) {
				return domain.ElectionPatch{}, fmt.Errorf("%w: transicao %s -> %s nao permitida", domain.ErrInvalidState, current.Status, status)
			}
			merged.Status = status
		}
	}

	if patch.Candidates != nil {
		if current.TotalVotes > 0 {
			return domain.ElectionPatch{}, fmt.Errorf("%w: candidatos nao podem ser trocados apos o primeiro voto", domain.ErrInvalidState)
		}
		merged.Candidates = domain.CandidatesFromInput(*patch.Candidates)
	}

	// Eleições importadas podem não ter startDate; só o patch que mexe na data recebe o "hoje".
	v.checkFields(&merged, verr, patch.StartDate != nil)
	if merged.TotalVoters > 0 && merged.TotalVoters < current.TotalVotes {
		verr.Add("totalVoters", "menor que o total de votos ja registrados")
	}
	if err := verr.OrNil(); err != nil {
		return domain.ElectionPatch{}, err
	}

	return normalizedPatch(patch, merged), nil
}

func (v *Validator) checkFields(e *domain.Election, verr *domain.ValidationError, defaultStart bool) {
	e.Title = strings.TrimSpace(e.Title)
	e.Description = strings.TrimSpace(e.Description)
	e.Constituency = strings.TrimSpace(e.Constituency)
	e.State = strings.TrimSpace(e.State)

	required(verr, "title", e.Title)
	required(verr, "description", e.Description)
	required(verr, "constituency", e.Constituency)
	required(verr, "state", e.State)

	if strings.TrimSpace(string(e.Category)) == "" {
		verr.Add("category", "obrigatorio")
	} else if cat, ok := domain.ParseCategory(string(e.Category)); ok {
		e.Category = cat
	} else {
		verr.Add("category", "deve ser National, State ou Local")
	}

	if e.TotalVoters <= 0 {
		verr.Add("totalVoters", "deve ser um inteiro positivo")
	}

	e.StartDate = strings.TrimSpace(e.StartDate)
	if e.StartDate == "" && defaultStart {
		e.StartDate = v.clock.Agora().Format(domain.DateLayout)
	}
	hasStart := e.StartDate != ""
	var start time.Time
	var startErr error
	if hasStart {
		start, startErr = time.Parse(domain.DateLayout, e.StartDate)
		if startErr != nil {
			verr.Add("startDate", "data invalida, use AAAA-MM-DD")
		}
	}

	e.EndDate = strings.TrimSpace(e.EndDate)
	switch end, err := time.Parse(domain.DateLayout, e.EndDate); {
	case e.EndDate == "":
		verr.Add("endDate", "obrigatorio")
	case err != nil:
		verr.Add("endDate", "data invalida, use AAAA-MM-DD")
	case hasStart && startErr == nil && end.Before(start):
		verr.Add("endDate", "anterior a startDate")
	}

	if len(e.Candidates) == 0 {
		verr.Add("candidates", "informe ao menos um candidato com nome e partido")
	}
}

func required(verr *domain.ValidationError, field, value string) {
	if value == "" {
		verr.Add(field, "obrigatorio")
	}
}

// normalizedPatch reescreve os campos presentes no patch com os valores já saneados.
func normalizedPatch(patch domain.ElectionPatch, merged domain.Election) domain.ElectionPatch {
	out := domain.ElectionPatch{}
	if patch.Title != nil {
		out.Title = &merged.Title
	}
	if patch.Description != nil {
		out.Description = &merged.Description
	}
	if patch.Category != nil {
		out.Category = &merged.Category
	}
	if patch.Constituency != nil {
		out.Constituency = &merged.Constituency
	}
	if patch.State != nil {
		out.State = &merged.State
	}
	if patch.TotalVoters != nil {
		out.TotalVoters = &merged.TotalVoters
	}
	if patch.Status != nil {
		out.Status = &merged.Status
	}
	if patch.StartDate != nil {
		out.StartDate = &merged.StartDate
	}
	if patch.EndDate != nil {
		out.EndDate = &merged.EndDate
	}
	if patch.Candidates != nil {
		inputs := make([]domain.CandidateInput, len(merged.Candidates))
		for i, c := range merged.Candidates {
			inputs[i] = domain.CandidateInput{Name: c.Name, Party: c.Party, Description: c.Description}
		}
		out.Candidates = &inputs
	}
	return out
}

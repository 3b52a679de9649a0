package domain

import "strings"

// ParseStatus aceita variações de caixa e espaços e devolve o status canônico.
func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusActive:
		return StatusActive, true
	case StatusCompleted:
		return StatusCompleted, true
	case StatusScheduled:
		return StatusScheduled, true
	}
	return "", false
}

func ParseCategory(raw string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "national":
		return CategoryNational, true
	case "state":
		return CategoryState, true
	case "local":
		return CategoryLocal, true
	}
	return "", false
}

// CheckRequired aplica as regras mínimas de presença exigidas antes de gravar uma eleição.
func (e Election) CheckRequired() error {
	verr := &ValidationError{}
	if strings.TrimSpace(e.Title) == "" {
		verr.Add("title", "obrigatorio")
	}
	if strings.TrimSpace(string(e.Category)) == "" {
		verr.Add("category", "obrigatorio")
	}
	if strings.TrimSpace(e.Constituency) == "" {
		verr.Add("constituency", "obrigatorio")
	}
	if strings.TrimSpace(e.State) == "" {
		verr.Add("state", "obrigatorio")
	}
	if e.TotalVoters <= 0 {
		verr.Add("totalVoters", "deve ser um inteiro positivo")
	}
	if strings.TrimSpace(e.EndDate) == "" {
		verr.Add("endDate", "obrigatorio")
	}
	return verr.OrNil()
}

// Blank indica entrada sem nome ou sem partido.
func (in CandidateInput) Blank() bool {
	return strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Party) == ""
}

// CandidatesFromInput descarta entradas em branco e numera o restante a partir de 1.
func CandidatesFromInput(inputs []CandidateInput) []Candidate {
	candidates := make([]Candidate, 0, len(inputs))
	for _, in := range inputs {
		if in.Blank() {
			continue
		}
		idx := len(candidates)
		candidates = append(candidates, Candidate{
			ID:          CandidateID(idx + 1),
			Name:        strings.TrimSpace(in.Name),
			Party:       strings.TrimSpace(in.Party),
			Description: strings.TrimSpace(in.Description),
			Color:       Palette[idx%len(Palette)],
		})
	}
	return candidates
}

func (e Election) FindCandidate(id CandidateID) (Candidate, bool) {
	for _, c := range e.Candidates {
		if c.ID == id {
			return c, true
		}
	}
	return Candidate{}, false
}

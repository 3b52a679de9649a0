package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
)

type electionModel struct {
	ID           string           `gorm:"column:id;primaryKey;size:26"`
	Title        string           `gorm:"column:title;not null"`
	Description  string           `gorm:"column:description"`
	Category     string           `gorm:"column:category;size:16;not null"`
	Constituency string           `gorm:"column:constituency;not null"`
	State        string           `gorm:"column:state;not null"`
	TotalVoters  int64            `gorm:"column:total_voters;not null"`
	TotalVotes   int64            `gorm:"column:total_votes;not null;default:0"`
	Status       string           `gorm:"column:status;size:16;index;not null"`
	StartDate    string           `gorm:"column:start_date;size:10"`
	EndDate      string           `gorm:"column:end_date;size:10;not null"`
	CreatedAt    time.Time        `gorm:"column:created_at;index;autoCreateTime:false"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime:false"`
	Candidates   []candidateModel `gorm:"foreignKey:ElectionID;references:ID;constraint:OnDelete:CASCADE"`
}

func (electionModel) TableName() string {
	return "elections"
}

type candidateModel struct {
	ElectionID  string `gorm:"column:election_id;primaryKey;size:26"`
	ID          int    `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name        string `gorm:"column:name;not null"`
	Party       string `gorm:"column:party;not null"`
	Description string `gorm:"column:description"`
	Votes       int64  `gorm:"column:votes;not null;default:0"`
	Color       string `gorm:"column:color;size:16"`
}

func (candidateModel) TableName() string {
	return "candidates"
}

type voteModel struct {
	ID          string    `gorm:"column:id;primaryKey;size:26"`
	ElectionID  string    `gorm:"column:election_id;index;size:26;not null"`
	CandidateID int       `gorm:"column:candidate_id;not null"`
	CastAt      time.Time `gorm:"column:cast_at;index;not null"`
}

func (voteModel) TableName() string {
	return "votes"
}

// Models lista as tabelas na ordem em que devem ser criadas.
func Models() []any {
	return []any{&electionModel{}, &candidateModel{}, &voteModel{}}
}

// toDomain é o único ponto de normalização de status/categoria lidos do banco.
func (m electionModel) toDomain() domain.Election {
	e := domain.Election{
		ID:           domain.ElectionID(m.ID),
		Title:        m.Title,
		Description:  m.Description,
		Category:     domain.Category(m.Category),
		Constituency: m.Constituency,
		State:        m.State,
		TotalVoters:  m.TotalVoters,
		TotalVotes:   m.TotalVotes,
		Status:       domain.Status(strings.ToLower(strings.TrimSpace(m.Status))),
		StartDate:    m.StartDate,
		EndDate:      m.EndDate,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
		Candidates:   make([]domain.Candidate, len(m.Candidates)),
	}
	if status, ok := domain.ParseStatus(m.Status); ok {
		e.Status = status
	}
	if cat, ok := domain.ParseCategory(m.Category); ok {
		e.Category = cat
	}
	for i, c := range m.Candidates {
		e.Candidates[i] = c.toDomain()
	}
	return e
}

func fromDomainElection(e domain.Election) electionModel {
	m := electionModel{
		ID:           string(e.ID),
		Title:        e.Title,
		Description:  e.Description,
		Category:     string(e.Category),
		Constituency: e.Constituency,
		State:        e.State,
		TotalVoters:  e.TotalVoters,
		TotalVotes:   e.TotalVotes,
		Status:       string(e.Status),
		StartDate:    e.StartDate,
		EndDate:      e.EndDate,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	m.Candidates = fromDomainCandidates(m.ID, e.Candidates)
	return m
}

func (m candidateModel) toDomain() domain.Candidate {
	return domain.Candidate{
		ID:          domain.CandidateID(m.ID),
		Name:        m.Name,
		Party:       m.Party,
		Description: m.Description,
		Votes:       m.Votes,
		Color:       m.Color,
	}
}

func fromDomainCandidates(electionID string, candidates []domain.Candidate) []candidateModel {
	out := make([]candidateModel, len(candidates))
	for i, c := range candidates {
		out[i] = candidateModel{
			ElectionID:  electionID,
			ID:          int(c.ID),
			Name:        c.Name,
			Party:       c.Party,
			Description: c.Description,
			Votes:       c.Votes,
			Color:       c.Color,
		}
	}
	return out
}

func (m voteModel) toDomain() domain.Vote {
	return domain.Vote{
		ID:          domain.VoteID(m.ID),
		ElectionID:  domain.ElectionID(m.ElectionID),
		CandidateID: domain.CandidateID(m.CandidateID),
		Timestamp:   m.CastAt.UTC(),
	}
}

func fromDomainVote(v domain.Vote) voteModel {
	return voteModel{
		ID:          string(v.ID),
		ElectionID:  string(v.ElectionID),
		CandidateID: int(v.CandidateID),
		CastAt:      v.Timestamp,
	}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("gorm %s: %w: %w", op, domain.ErrStorage, err)
}

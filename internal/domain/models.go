package domain

import (
	"time"
)

type (
	ElectionID  string
	CandidateID int
	VoteID      string
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type Category string

const (
	CategoryNational Category = "National"
	CategoryState    Category = "State"
	CategoryLocal    Category = "Local"
)

// DateLayout é o formato de data de calendário usado em startDate/endDate.
const DateLayout = "2006-01-02"

// Palette define as cores atribuídas aos candidatos em rodízio.
var Palette = []string{"blue", "red", "green", "purple", "yellow"}

type Election struct {
	ID           ElectionID  `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Category     Category    `json:"category"`
	Constituency string      `json:"constituency"`
	State        string      `json:"state"`
	TotalVoters  int64       `json:"totalVoters"`
	TotalVotes   int64       `json:"totalVotes"`
	Status       Status      `json:"status"`
	StartDate    string      `json:"startDate"`
	EndDate      string      `json:"endDate"`
	Candidates   []Candidate `json:"candidates"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`

	// Turnout é derivado na leitura; nil significa "não disponível".
	Turnout *float64 `json:"turnout"`
}

type Candidate struct {
	ID          CandidateID `json:"id"`
	Name        string      `json:"name"`
	Party       string      `json:"party"`
	Description string      `json:"description,omitempty"`
	Votes       int64       `json:"votes"`
	Percentage  float64     `json:"percentage"`
	Color       string      `json:"color"`
}

type Vote struct {
	ID          VoteID      `json:"id"`
	ElectionID  ElectionID  `json:"electionId"`
	CandidateID CandidateID `json:"candidateId"`
	Timestamp   time.Time   `json:"timestamp"`
}

// ElectionPatch carrega apenas os campos alterados numa edição administrativa.
type ElectionPatch struct {
	Title        *string           `json:"title,omitempty"`
	Description  *string           `json:"description,omitempty"`
	Category     *Category         `json:"category,omitempty"`
	Constituency *string           `json:"constituency,omitempty"`
	State        *string           `json:"state,omitempty"`
	TotalVoters  *int64            `json:"totalVoters,omitempty"`
	Status       *Status           `json:"status,omitempty"`
	StartDate    *string           `json:"startDate,omitempty"`
	EndDate      *string           `json:"endDate,omitempty"`
	Candidates   *[]CandidateInput `json:"candidates,omitempty"`
}

// CandidateInput é o formato aceito na criação/edição, antes de receber id e cor.
type CandidateInput struct {
	Name        string `json:"name"`
	Party       string `json:"party"`
	Description string `json:"description,omitempty"`
}

type ElectionInput struct {
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Category     Category         `json:"category"`
	Constituency string           `json:"constituency"`
	State        string           `json:"state"`
	TotalVoters  int64            `json:"totalVoters"`
	Status       Status           `json:"status,omitempty"`
	StartDate    string           `json:"startDate,omitempty"`
	EndDate      string           `json:"endDate"`
	Candidates   []CandidateInput `json:"candidates"`
}

// DashboardStats é sempre recalculado a partir das coleções; nunca é persistido.
type DashboardStats struct {
	TotalVotes         int64      `json:"totalVotes"`
	ActiveElections    int        `json:"activeElections"`
	CompletedElections int        `json:"completedElections"`
	TotalCandidates    int        `json:"totalCandidates"`
	Elections          []Election `json:"elections"`
	RecentVotes        []Vote     `json:"recentVotes"`
}

// DashboardSnapshot separa o instante do cálculo das estatísticas em si.
type DashboardSnapshot struct {
	Stats      DashboardStats `json:"stats"`
	ComputedAt time.Time      `json:"computedAt"`
}

// Change descreve uma alteração nas coleções, usada para reagregar painéis ao vivo.
type Change struct {
	Collection string     `json:"collection"`
	ElectionID ElectionID `json:"electionId"`
	Kind       string     `json:"kind"`
}

const (
	CollectionElections = "elections"
	CollectionVotes     = "votes"
)

// LoginAttempt identifica uma tentativa de login para o controle de abuso.
type LoginAttempt struct {
	Email    string
	RemoteIP string
}

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/painel-eleicoes/internal/app/lifecycle"
	"github.com/marcelojr/painel-eleicoes/internal/domain"
	"github.com/marcelojr/painel-eleicoes/internal/platform/clock"
)

func TestElectionRepository_CreateEFindByID_QuandoValido_DevePreservarCampos(t *testing.T) {
	repo, _ := setupRepos(t)
	ctx := context.Background()
	entrada := novaEleicao("Lok Sabha", "", 1000)
	entrada.TotalVotes = 99

	id, err := repo.Create(ctx, entrada)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	e, err := repo.FindByID(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, e.ID)
	assert.Equal(t, entrada.Title, e.Title)
	assert.Equal(t, entrada.Description, e.Description)
	assert.Equal(t, domain.CategoryNational, e.Category)
	assert.Equal(t, entrada.Constituency, e.Constituency)
	assert.Equal(t, entrada.State, e.State)
	assert.Equal(t, int64(1000), e.TotalVoters)
	assert.Equal(t, entrada.StartDate, e.StartDate)
	assert.Equal(t, entrada.EndDate, e.EndDate)
	assert.Equal(t, domain.StatusActive, e.Status)
	assert.Zero(t, e.TotalVotes)
	assert.False(t, e.CreatedAt.IsZero())
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)

	require.Len(t, e.Candidates, 2)
	assert.Equal(t, domain.CandidateID(1), e.Candidates[0].ID)
	assert.Equal(t, "Arvind Sawant", e.Candidates[0].Name)
	assert.Equal(t, "blue", e.Candidates[0].Color)
	assert.Equal(t, domain.CandidateID(2), e.Candidates[1].ID)
	assert.Zero(t, e.Candidates[1].Votes)
}

func TestElectionRepository_Create_QuandoCamposObrigatoriosAusentes_DeveRetornarValidationError(t *testing.T) {
	repo, _ := setupRepos(t)
	entrada := novaEleicao("", domain.StatusActive, -5)
	entrada.EndDate = ""

	_, err := repo.Create(context.Background(), entrada)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("title"))
	assert.True(t, verr.Has("totalVoters"))
	assert.True(t, verr.Has("endDate"))
}

func TestElectionRepository_FindByID_QuandoNaoExiste_DeveRetornarNotFound(t *testing.T) {
	repo, _ := setupRepos(t)

	_, err := repo.FindByID(context.Background(), "inexistente")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestElectionRepository_List_DeveOrdenarPorCriacaoDecrescente(t *testing.T) {
	repo, _ := setupRepos(t)
	primeira := criar(t, repo, novaEleicao("Primeira", domain.StatusActive, 10))
	segunda := criar(t, repo, novaEleicao("Segunda", domain.StatusScheduled, 10))
	terceira := criar(t, repo, novaEleicao("Terceira", domain.StatusActive, 10))

	lista, err := repo.List(context.Background())
	require.NoError(t, err)

	require.Len(t, lista, 3)
	assert.Equal(t, []domain.ElectionID{terceira, segunda, primeira}, []domain.ElectionID{lista[0].ID, lista[1].ID, lista[2].ID})
	assert.Len(t, lista[0].Candidates, 2)
}

func TestElectionRepository_ListActive_DeveFiltrarPorStatus(t *testing.T) {
	repo, _ := setupRepos(t)
	ctx := context.Background()
	ativa := criar(t, repo, novaEleicao("Ativa", domain.StatusActive, 10))
	criar(t, repo, novaEleicao("Agendada", domain.StatusScheduled, 10))
	encerrada := criar(t, repo, novaEleicao("Encerrada", domain.StatusActive, 10))
	status := domain.StatusCompleted
	require.NoError(t, repo.Update(ctx, encerrada, domain.ElectionPatch{Status: &status}))

	lista, err := repo.ListActive(ctx)
	require.NoError(t, err)

	require.Len(t, lista, 1)
	assert.Equal(t, ativa, lista[0].ID)
}

func TestElectionRepository_Update_QuandoPatchParcial_DeveAlterarSomenteCamposInformados(t *testing.T) {
	repo, _ := setupRepos(t)
	ctx := context.Background()
	id := criar(t, repo, novaEleicao("Original", domain.StatusActive, 10))
	antes, err := repo.FindByID(ctx, id)
	require.NoError(t, err)

	titulo := "Renomeada"
	eleitores := int64(20)
	require.NoError(t, repo.Update(ctx, id, domain.ElectionPatch{Title: &titulo, TotalVoters: &eleitores}))

	depois, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Renomeada", depois.Title)
	assert.Equal(t, int64(20), depois.TotalVoters)
	assert.Equal(t, antes.Description, depois.Description)
	assert.Equal(t, antes.CreatedAt, depois.CreatedAt)
	assert.True(t, depois.UpdatedAt.After(antes.UpdatedAt))
	assert.Len(t, depois.Candidates, 2)
}

func TestElectionRepository_Update_QuandoTrocaCandidatos_DeveRenumerar(t *testing.T) {
	repo, _ := setupRepos(t)
	ctx := context.Background()
	id := criar(t, repo, novaEleicao("Original", domain.StatusScheduled, 10))

	novos := []domain.CandidateInput{
		{Name: "A", Party: "P1"},
		{Name: "", Party: "descartado"},
		{Name: "B", Party: "P2"},
		{Name: "C", Party: "P3"},
	}
	require.NoError(t, repo.Update(ctx, id, domain.ElectionPatch{Candidates: &novos}))

	e, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	require.Len(t, e.Candidates, 3)
	assert.Equal(t, "C", e.Candidates[2].Name)
	assert.Equal(t, domain.CandidateID(3), e.Candidates[2].ID)
	assert.Equal(t, "green", e.Candidates[2].Color)
}

func TestElectionRepository_Update_QuandoNaoExiste_DeveRetornarNotFound(t *testing.T) {
	repo, _ := setupRepos(t)
	titulo := "x"

	err := repo.Update(context.Background(), "inexistente", domain.ElectionPatch{Title: &titulo})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestElectionRepository_Delete_DeveRemoverEleicaoECandidatos(t *testing.T) {
	repo, _ := setupRepos(t)
	ctx := context.Background()
	id := criar(t, repo, novaEleicao("Removida", domain.StatusActive, 10))

	require.NoError(t, repo.Delete(ctx, id))

	_, err := repo.FindByID(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var candidatos int64
	require.NoError(t, repo.db.Model(&candidateModel{}).Where("election_id = ?", string(id)).Count(&candidatos).Error)
	assert.Zero(t, candidatos)

	assert.ErrorIs(t, repo.Delete(ctx, id), domain.ErrNotFound)
}

func TestElectionRepository_Count(t *testing.T) {
	repo, _ := setupRepos(t)
	ctx := context.Background()

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	criar(t, repo, novaEleicao("Uma", domain.StatusActive, 10))

	total, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestElectionModel_toDomain_DeveNormalizarVariantes(t *testing.T) {
	m := electionModel{ID: "E1", Status: " Active ", Category: "state"}

	e := m.toDomain()

	assert.Equal(t, domain.StatusActive, e.Status)
	assert.Equal(t, domain.CategoryState, e.Category)
	assert.NotNil(t, e.Candidates)
}

func TestElectionRepository_Import_DevePreservarVotosPorCandidato(t *testing.T) {
	repo, _ := setupRepos(t)
	e := novaEleicao("Historica", domain.Status("Completed"), 1000)
	e.Candidates[0].Votes = 300
	e.Candidates[1].Votes = 200
	e.TotalVotes = 999

	id, err := repo.Import(context.Background(), e)
	require.NoError(t, err)

	got, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Equal(t, int64(500), got.TotalVotes)
	require.Len(t, got.Candidates, 2)
	assert.Equal(t, int64(300), got.Candidates[0].Votes)
	assert.Equal(t, int64(200), got.Candidates[1].Votes)
}

func TestElectionRepository_Import_QuandoVotosExcedemEleitores_DeveRejeitar(t *testing.T) {
	repo, _ := setupRepos(t)
	e := novaEleicao("Inconsistente", domain.StatusActive, 100)
	e.Candidates[0].Votes = 101

	_, err := repo.Import(context.Background(), e)

	assert.ErrorIs(t, err, domain.ErrValidation)
	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total)
}

// somaCandidatos confere o invariante entre o total da eleição e os votos por candidato.
func somaCandidatos(e domain.Election) int64 {
	var total int64
	for _, c := range e.Candidates {
		total += c.Votes
	}
	return total
}

func TestElectionRepository_Update_QuandoVotosChegamAposLeitura_NaoDeveTrocarCandidatos(t *testing.T) {
	elections, votes := setupRepos(t)
	ctx := context.Background()
	id := criar(t, elections, novaEleicao("Concorrida", domain.StatusActive, 100))

	lida, err := elections.FindByID(ctx, id)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := votes.Cast(ctx, domain.Vote{ElectionID: id, CandidateID: 1})
		require.NoError(t, err)
	}

	novos := []domain.CandidateInput{{Name: "Novo", Party: "Outro"}}
	validador := lifecycle.NewValidator(clock.Fixed{Instante: time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)})
	patch, err := validador.ValidateUpdate(lida, domain.ElectionPatch{Candidates: &novos})
	require.NoError(t, err, "a copia lida ainda nao tinha votos")

	err = elections.Update(ctx, id, patch)

	assert.ErrorIs(t, err, domain.ErrInvalidState)
	e, err := elections.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), e.TotalVotes)
	assert.Equal(t, e.TotalVotes, somaCandidatos(e))
	assert.Equal(t, "Arvind Sawant", e.Candidates[0].Name)
}

func TestElectionRepository_Update_QuandoVotosChegamAposLeitura_NaoDeveReduzirEleitoresAbaixoDosVotos(t *testing.T) {
	elections, votes := setupRepos(t)
	ctx := context.Background()
	id := criar(t, elections, novaEleicao("Apertada", domain.StatusActive, 100))

	lida, err := elections.FindByID(ctx, id)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := votes.Cast(ctx, domain.Vote{ElectionID: id, CandidateID: 2})
		require.NoError(t, err)
	}

	eleitores := int64(1)
	validador := lifecycle.NewValidator(clock.Fixed{Instante: time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)})
	patch, err := validador.ValidateUpdate(lida, domain.ElectionPatch{TotalVoters: &eleitores})
	require.NoError(t, err)

	err = elections.Update(ctx, id, patch)

	assert.ErrorIs(t, err, domain.ErrValidation)
	e, err := elections.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(100), e.TotalVoters)
	assert.LessOrEqual(t, e.TotalVotes, e.TotalVoters)
}

func TestElectionRepository_Update_QuandoEleitoresIguaisAosVotos_DevePermitir(t *testing.T) {
	elections, votes := setupRepos(t)
	ctx := context.Background()
	id := criar(t, elections, novaEleicao("Justa", domain.StatusActive, 100))
	for i := 0; i < 2; i++ {
		_, err := votes.Cast(ctx, domain.Vote{ElectionID: id, CandidateID: 1})
		require.NoError(t, err)
	}

	eleitores := int64(2)
	require.NoError(t, elections.Update(ctx, id, domain.ElectionPatch{TotalVoters: &eleitores}))

	_, err := votes.Cast(ctx, domain.Vote{ElectionID: id, CandidateID: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

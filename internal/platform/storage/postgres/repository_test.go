package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
	"github.com/marcelojr/painel-eleicoes/internal/platform/ids"
)

// relogio avança um segundo a cada leitura para dar created_at distintos.
type relogio struct {
	mu    sync.Mutex
	atual time.Time
}

func (r *relogio) Agora() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.atual = r.atual.Add(time.Second)
	return r.atual
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Banco em memória existe por conexão.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(Models()...))

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func setupRepos(t *testing.T) (*ElectionRepository, *VoteRepository) {
	t.Helper()
	db := setupDB(t)
	clk := &relogio{atual: time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)}
	gen := ids.NewGenerator()
	return NewElectionRepository(db, gen, clk), NewVoteRepository(db, gen, clk)
}

func novaEleicao(titulo string, status domain.Status, eleitores int64) domain.Election {
	return domain.Election{
		Title:        titulo,
		Description:  "Descricao de " + titulo,
		Category:     domain.CategoryNational,
		Constituency: "Mumbai South",
		State:        "Maharashtra",
		TotalVoters:  eleitores,
		Status:       status,
		StartDate:    "2025-09-10",
		EndDate:      "2025-09-30",
		Candidates: domain.CandidatesFromInput([]domain.CandidateInput{
			{Name: "Arvind Sawant", Party: "Shiv Sena (UBT)"},
			{Name: "Milind Deora", Party: "Shiv Sena"},
		}),
	}
}

func criar(t *testing.T, repo *ElectionRepository, e domain.Election) domain.ElectionID {
	t.Helper()
	id, err := repo.Create(context.Background(), e)
	require.NoError(t, err)
	return id
}

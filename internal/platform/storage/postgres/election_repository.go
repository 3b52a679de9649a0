package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
)

// ElectionRepository mapeia o agregado de eleição (com candidatos) para tabelas GORM.
type ElectionRepository struct {
	db    *gorm.DB
	ids   domain.IDGenerator
	clock domain.Clock
}

func NewElectionRepository(db *gorm.DB, ids domain.IDGenerator, clock domain.Clock) *ElectionRepository {
	return &ElectionRepository{db: db, ids: ids, clock: clock}
}

func withCandidates(db *gorm.DB) *gorm.DB {
	return db.Preload("Candidates", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("id ASC")
	})
}

// Create atribui id e carimbos de tempo; status vazio vira active e os contadores começam em zero.
func (r *ElectionRepository) Create(ctx context.Context, e domain.Election) (domain.ElectionID, error) {
	if err := e.CheckRequired(); err != nil {
		return "", err
	}

	now := r.clock.Agora()
	e.ID = domain.ElectionID(r.ids.New())
	e.CreatedAt = now
	e.UpdatedAt = now
	e.TotalVotes = 0
	if status, ok := domain.ParseStatus(string(e.Status)); ok {
		e.Status = status
	} else {
		e.Status = domain.StatusActive
	}
	for i := range e.Candidates {
		e.Candidates[i].Votes = 0
		e.Candidates[i].Percentage = 0
	}

	return r.insert(ctx, e)
}

// Import grava uma eleição histórica preservando os votos por candidato.
// totalVotes é recalculado como a soma dos candidatos e não pode passar de totalVoters.
func (r *ElectionRepository) Import(ctx context.Context, e domain.Election) (domain.ElectionID, error) {
	if err := e.CheckRequired(); err != nil {
		return "", err
	}

	var total int64
	for i := range e.Candidates {
		if e.Candidates[i].Votes < 0 {
			e.Candidates[i].Votes = 0
		}
		e.Candidates[i].Percentage = 0
		total += e.Candidates[i].Votes
	}
	if total > e.TotalVoters {
		verr := &domain.ValidationError{}
		verr.Add("totalVotes", "maior que totalVoters")
		return "", verr
	}

	now := r.clock.Agora()
	e.ID = domain.ElectionID(r.ids.New())
	e.CreatedAt = now
	e.UpdatedAt = now
	e.TotalVotes = total
	if status, ok := domain.ParseStatus(string(e.Status)); ok {
		e.Status = status
	} else {
		e.Status = domain.StatusActive
	}
	return r.insert(ctx, e)
}

func (r *ElectionRepository) insert(ctx context.Context, e domain.Election) (domain.ElectionID, error) {
	model := fromDomainElection(e)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return "", storageErr("eleicoes: inserir", err)
	}
	return e.ID, nil
}

func (r *ElectionRepository) List(ctx context.Context) ([]domain.Election, error) {
	return r.list(ctx, r.db.WithContext(ctx), "listar")
}

func (r *ElectionRepository) ListActive(ctx context.Context) ([]domain.Election, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("LOWER(status) = ?", string(domain.StatusActive)), "listar ativas")
}

func (r *ElectionRepository) list(_ context.Context, q *gorm.DB, op string) ([]domain.Election, error) {
	var models []electionModel
	if err := withCandidates(q).
		Order("created_at DESC").
		Order("id DESC").
		Find(&models).Error; err != nil {
		return nil, storageErr("eleicoes: "+op, err)
	}

	result := make([]domain.Election, len(models))
	for i, m := range models {
		result[i] = m.toDomain()
	}
	return result, nil
}

func (r *ElectionRepository) FindByID(ctx context.Context, id domain.ElectionID) (domain.Election, error) {
	var model electionModel
	if err := withCandidates(r.db.WithContext(ctx)).First(&model, "id = ?", string(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Election{}, fmt.Errorf("%w: eleicao %s", domain.ErrNotFound, id)
		}
		return domain.Election{}, storageErr("eleicoes: buscar id", err)
	}
	return model.toDomain(), nil
}

// Update grava apenas os campos presentes no patch e recarimba updated_at.
// Troca de candidatos e redução de totalVoters são conferidas de novo contra a linha travada.
func (r *ElectionRepository) Update(ctx context.Context, id domain.ElectionID, patch domain.ElectionPatch) error {
	changes := map[string]any{"updated_at": r.clock.Agora()}
	if patch.Title != nil {
		changes["title"] = *patch.Title
	}
	if patch.Description != nil {
		changes["description"] = *patch.Description
	}
	if patch.Category != nil {
		changes["category"] = string(*patch.Category)
	}
	if patch.Constituency != nil {
		changes["constituency"] = *patch.Constituency
	}
	if patch.State != nil {
		changes["state"] = *patch.State
	}
	if patch.TotalVoters != nil {
		changes["total_voters"] = *patch.TotalVoters
	}
	if patch.Status != nil {
		changes["status"] = string(*patch.Status)
	}
	if patch.StartDate != nil {
		changes["start_date"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		changes["end_date"] = *patch.EndDate
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A linha fica travada até o commit; Cast trava a mesma linha, então os contadores lidos aqui são os vigentes.
		var locked electionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "total_votes", "total_voters").
			First(&locked, "id = ?", string(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: eleicao %s", domain.ErrNotFound, id)
			}
			return storageErr("eleicoes: travar", err)
		}
		if patch.Candidates != nil && locked.TotalVotes > 0 {
			return fmt.Errorf("%w: candidatos nao podem ser trocados apos o primeiro voto", domain.ErrInvalidState)
		}
		if patch.TotalVoters != nil && *patch.TotalVoters < locked.TotalVotes {
			verr := &domain.ValidationError{}
			verr.Add("totalVoters", "menor que o total de votos ja registrados")
			return verr
		}

		res := tx.Model(&electionModel{}).Where("id = ?", string(id)).Updates(changes)
		if res.Error != nil {
			return storageErr("eleicoes: atualizar", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: eleicao %s", domain.ErrNotFound, id)
		}

		if patch.Candidates == nil {
			return nil
		}
		if err := tx.Where("election_id = ?", string(id)).Delete(&candidateModel{}).Error; err != nil {
			return storageErr("candidatos: remover", err)
		}
		candidates := fromDomainCandidates(string(id), domain.CandidatesFromInput(*patch.Candidates))
		if len(candidates) == 0 {
			return nil
		}
		if err := tx.Create(&candidates).Error; err != nil {
			return storageErr("candidatos: inserir", err)
		}
		return nil
	})
}

func (r *ElectionRepository) Delete(ctx context.Context, id domain.ElectionID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("election_id = ?", string(id)).Delete(&candidateModel{}).Error; err != nil {
			return storageErr("candidatos: remover", err)
		}
		res := tx.Where("id = ?", string(id)).Delete(&electionModel{})
		if res.Error != nil {
			return storageErr("eleicoes: remover", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: eleicao %s", domain.ErrNotFound, id)
		}
		return nil
	})
}

// Count é usado pelo seed para decidir se o banco está vazio.
func (r *ElectionRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&electionModel{}).Count(&total).Error; err != nil {
		return 0, storageErr("eleicoes: contar", err)
	}
	return total, nil
}

var _ domain.ElectionRepository = (*ElectionRepository)(nil)

package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
)

const defaultRecentLimit = 10

// VoteRepository grava votos e aplica os incrementos de contadores na mesma transação.
type VoteRepository struct {
	db    *gorm.DB
	ids   domain.IDGenerator
	clock domain.Clock
}

func NewVoteRepository(db *gorm.DB, ids domain.IDGenerator, clock domain.Clock) *VoteRepository {
	return &VoteRepository{db: db, ids: ids, clock: clock}
}

// Cast é idempotente pelo id do voto: reaplicar um voto já gravado não incrementa nada.
func (r *VoteRepository) Cast(ctx context.Context, v domain.Vote) (domain.Vote, error) {
	if v.ID == "" {
		v.ID = domain.VoteID(r.ids.New())
	}
	if v.Timestamp.IsZero() {
		v.Timestamp = r.clock.Agora()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var election electionModel
		// Travar a eleição impede que uma edição troque os candidatos entre a conferência e o incremento.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "status").
			First(&election, "id = ?", string(v.ElectionID)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: eleicao %s", domain.ErrNotFound, v.ElectionID)
			}
			return storageErr("votos: buscar eleicao", err)
		}
		if status, _ := domain.ParseStatus(election.Status); status != domain.StatusActive {
			return fmt.Errorf("%w: eleicao %s esta %s", domain.ErrInvalidState, v.ElectionID, election.Status)
		}

		var candidate candidateModel
		if err := tx.First(&candidate, "election_id = ? AND id = ?", string(v.ElectionID), int(v.CandidateID)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: candidato %d na eleicao %s", domain.ErrNotFound, v.CandidateID, v.ElectionID)
			}
			return storageErr("votos: buscar candidato", err)
		}

		model := fromDomainVote(v)
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
		if res.Error != nil {
			return storageErr("votos: inserir", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		// Incremento no próprio UPDATE; a condição cobre mudança de status concorrente e o teto de eleitores.
		res = tx.Model(&electionModel{}).
			Where("id = ? AND LOWER(status) = ? AND total_votes < total_voters", string(v.ElectionID), string(domain.StatusActive)).
			UpdateColumns(map[string]any{
				"total_votes": gorm.Expr("total_votes + ?", 1),
				"updated_at":  r.clock.Agora(),
			})
		if res.Error != nil {
			return storageErr("votos: incrementar eleicao", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: eleicao %s nao aceita mais votos", domain.ErrInvalidState, v.ElectionID)
		}

		res = tx.Model(&candidateModel{}).
			Where("election_id = ? AND id = ?", string(v.ElectionID), int(v.CandidateID)).
			UpdateColumn("votes", gorm.Expr("votes + ?", 1))
		if res.Error != nil {
			return storageErr("votos: incrementar candidato", res.Error)
		}
		return nil
	})
	if err != nil {
		return domain.Vote{}, err
	}
	return v, nil
}

func (r *VoteRepository) ListByElection(ctx context.Context, id domain.ElectionID) ([]domain.Vote, error) {
	var models []voteModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", string(id)).
		Order("cast_at DESC").
		Order("id DESC").
		Find(&models).Error; err != nil {
		return nil, storageErr("votos: listar por eleicao", err)
	}
	return votesToDomain(models), nil
}

// ListRecent usa limite 10 quando limit não é positivo.
func (r *VoteRepository) ListRecent(ctx context.Context, limit int) ([]domain.Vote, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	var models []voteModel
	if err := r.db.WithContext(ctx).
		Order("cast_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, storageErr("votos: listar recentes", err)
	}
	return votesToDomain(models), nil
}

func votesToDomain(models []voteModel) []domain.Vote {
	out := make([]domain.Vote, len(models))
	for i, m := range models {
		out[i] = m.toDomain()
	}
	return out
}

var _ domain.VoteRepository = (*VoteRepository)(nil)

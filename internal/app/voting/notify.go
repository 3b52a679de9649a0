package voting

import (
	"context"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
	"github.com/marcelojr/painel-eleicoes/internal/platform/logger"
)

const (
	ChangeCreated  = "created"
	ChangeUpdated  = "updated"
	ChangeDeleted  = "deleted"
	ChangeVoteCast = "cast"
)

// notify não falha a operação: a escrita já foi confirmada e o painel continua disponível por pull.
func (s *Service) notify(ctx context.Context, collection string, id domain.ElectionID, kind string) {
	if s.notificador == nil {
		return
	}
	change := domain.Change{Collection: collection, ElectionID: id, Kind: kind}
	if err := s.notificador.Publicar(ctx, change); err != nil {
		logger.Warn("falha ao publicar alteracao", "collection", collection, "election_id", id, "kind", kind, "error", err)
	}
}

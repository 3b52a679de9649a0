// Pacote migrations centraliza as versões gormigrate aplicadas na inicialização.
package migrations

import (
	"fmt"

	gormigrate "github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/marcelojr/painel-eleicoes/internal/platform/storage/postgres"
)

func Run(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("migrations: db nulo")
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "202509100001_eleicoes_candidatos_votos",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(postgres.Models()...)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("votes", "candidates", "elections")
			},
		},
		{
			ID: "202509100002_indice_votos_recentes",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_votes_election_cast_at ON votes (election_id, cast_at DESC)").Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP INDEX IF EXISTS idx_votes_election_cast_at").Error
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrations: falha ao aplicar: %w", err)
	}

	return nil
}

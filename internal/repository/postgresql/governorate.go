package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/master/governorate"
	"github.com/tutora/tutora-backend/internal/pkg/database"
)

type governorateRepositoryImpl struct {
	db *database.DB
}

func NewGovernorateRepository(db *database.DB) governorate.GovernorateRepository {
	return &governorateRepositoryImpl{db: db}
}

// List implements governorate.GovernorateRepository.
func (r *governorateRepositoryImpl) List(ctx context.Context) ([]governorate.Governorate, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id, name, name_ar FROM governorates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list governorates: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[governorate.Governorate])
}

// Exists implements governorate.GovernorateRepository.
func (r *governorateRepositoryImpl) Exists(ctx context.Context, id int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM governorates WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check governorate %d: %w", id, err)
	}
	return exists, nil
}

// Upsert implements governorate.GovernorateRepository.
func (r *governorateRepositoryImpl) Upsert(ctx context.Context, govs []governorate.Governorate) error {
	q := GetQuerier(ctx, r.db)

	batch := &pgx.Batch{}
	for _, g := range govs {
		batch.Queue(`
			INSERT INTO governorates (id, name, name_ar) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, name_ar = EXCLUDED.name_ar
		`, g.ID, g.Name, g.NameAr)
	}
	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert governorates: %w", err)
	}
	return nil
}

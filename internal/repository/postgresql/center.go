package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/center"
	"github.com/tutora/tutora-backend/internal/pkg/database"
)

type centerRepositoryImpl struct {
	db *database.DB
}

func NewCenterRepository(db *database.DB) center.CenterRepository {
	return &centerRepositoryImpl{db: db}
}

const centerColumns = `id, name, owner_id, phone, address, governorate_id, created_at, updated_at`

func scanCenter(row pgx.Row) (center.Center, error) {
	var c center.Center
	err := row.Scan(&c.ID, &c.Name, &c.OwnerID, &c.Phone, &c.Address, &c.GovernorateID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Update implements center.CenterRepository.
func (c *centerRepositoryImpl) Update(ctx context.Context, id string, req center.UpdateCenterRequest) error {
	q := GetQuerier(ctx, c.db)

	updates := make(map[string]interface{})

	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.GovernorateID != nil {
		updates["governorate_id"] = *req.GovernorateID
	}

	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()

	setClauses := make([]string, 0, len(updates))
	args := make([]interface{}, 0, len(updates)+1)
	i := 1
	for col, val := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}

	sql := "UPDATE centers SET " + strings.Join(setClauses, ", ") + fmt.Sprintf(" WHERE id = $%d", i)
	args = append(args, id)

	var updatedID string
	if err := q.QueryRow(ctx, sql+" RETURNING id", args...).Scan(&updatedID); err != nil {
		return fmt.Errorf("failed to update center with id %s: %w", id, err)
	}
	return nil
}

// Create implements center.CenterRepository.
func (c *centerRepositoryImpl) Create(ctx context.Context, newCenter center.Center) (center.Center, error) {
	q := GetQuerier(ctx, c.db)

	query := `
		INSERT INTO centers (name, owner_id, phone, address, governorate_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + centerColumns

	created, err := scanCenter(q.QueryRow(ctx, query,
		newCenter.Name, newCenter.OwnerID, newCenter.Phone, newCenter.Address, newCenter.GovernorateID))
	if err != nil {
		return center.Center{}, fmt.Errorf("failed to create center: %w", err)
	}
	return created, nil
}

// GetByID implements center.CenterRepository.
func (c *centerRepositoryImpl) GetByID(ctx context.Context, id string) (center.Center, error) {
	q := GetQuerier(ctx, c.db)

	return scanCenter(q.QueryRow(ctx, `SELECT `+centerColumns+` FROM centers WHERE id = $1`, id))
}

// SetOwner implements center.CenterRepository.
func (c *centerRepositoryImpl) SetOwner(ctx context.Context, id, ownerID string) error {
	q := GetQuerier(ctx, c.db)

	_, err := q.Exec(ctx, `UPDATE centers SET owner_id = $1, updated_at = NOW() WHERE id = $2`, ownerID, id)
	return err
}

// Delete implements center.CenterRepository.
func (c *centerRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, c.db)

	tag, err := q.Exec(ctx, `DELETE FROM centers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete center with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// List implements center.CenterRepository.
func (c *centerRepositoryImpl) List(ctx context.Context) ([]center.Center, error) {
	q := GetQuerier(ctx, c.db)

	rows, err := q.Query(ctx, `SELECT `+centerColumns+` FROM centers ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list centers: %w", err)
	}
	defer rows.Close()

	var centers []center.Center
	for rows.Next() {
		found, err := scanCenter(rows)
		if err != nil {
			return nil, err
		}
		centers = append(centers, found)
	}
	return centers, rows.Err()
}

// LockForUpdate implements center.CenterRepository.
func (c *centerRepositoryImpl) LockForUpdate(ctx context.Context, id string) error {
	q := GetQuerier(ctx, c.db)

	var locked string
	return q.QueryRow(ctx, `SELECT id FROM centers WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
}

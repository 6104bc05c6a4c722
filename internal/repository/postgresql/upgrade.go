package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tutora/tutora-backend/internal/domain/upgrade"
	"github.com/tutora/tutora-backend/internal/pkg/database"
)

type upgradeRepositoryImpl struct {
	db *database.DB
}

func NewUpgradeRepository(db *database.DB) upgrade.UpgradeRepository {
	return &upgradeRepositoryImpl{db: db}
}

const upgradeSelect = `
	SELECT r.id, r.center_id, r.user_id, r.current_plan_id, r.requested_plan_id, r.status, r.notes, r.admin_notes,
		r.handled_by, r.handled_at, r.created_at, r.updated_at,
		c.name, u.name, u.email, cp.name, rp.name
	FROM plan_upgrade_requests r
	JOIN centers c ON c.id = r.center_id
	JOIN users u ON u.id = r.user_id
	LEFT JOIN plans cp ON cp.id = r.current_plan_id
	JOIN plans rp ON rp.id = r.requested_plan_id
`

func scanUpgrade(row pgx.Row) (upgrade.PlanUpgradeRequest, error) {
	var r upgrade.PlanUpgradeRequest
	err := row.Scan(
		&r.ID, &r.CenterID, &r.UserID, &r.CurrentPlanID, &r.RequestedPlanID, &r.Status, &r.Notes, &r.AdminNotes,
		&r.HandledBy, &r.HandledAt, &r.CreatedAt, &r.UpdatedAt,
		&r.CenterName, &r.UserName, &r.UserEmail, &r.CurrentPlanName, &r.RequestedPlanName,
	)
	return r, err
}

func collectUpgrades(rows pgx.Rows) ([]upgrade.PlanUpgradeRequest, error) {
	defer rows.Close()
	var out []upgrade.PlanUpgradeRequest
	for rows.Next() {
		r, err := scanUpgrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetByID implements upgrade.UpgradeRepository.
func (r *upgradeRepositoryImpl) GetByID(ctx context.Context, id string) (upgrade.PlanUpgradeRequest, error) {
	q := GetQuerier(ctx, r.db)
	return scanUpgrade(q.QueryRow(ctx, upgradeSelect+` WHERE r.id = $1`, id))
}

// GetByIDForUpdate implements upgrade.UpgradeRepository.
func (r *upgradeRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (upgrade.PlanUpgradeRequest, error) {
	q := GetQuerier(ctx, r.db)
	return scanUpgrade(q.QueryRow(ctx, upgradeSelect+` WHERE r.id = $1 FOR UPDATE OF r`, id))
}

// Create implements upgrade.UpgradeRepository.
func (r *upgradeRepositoryImpl) Create(ctx context.Context, req upgrade.PlanUpgradeRequest) (upgrade.PlanUpgradeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO plan_upgrade_requests (center_id, user_id, current_plan_id, requested_plan_id, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id string
	err := q.QueryRow(ctx, query, req.CenterID, req.UserID, req.CurrentPlanID, req.RequestedPlanID, upgrade.StatusPending, req.Notes).Scan(&id)
	if err != nil {
		if isUniqueViolationOn(err, "upgrade_one_pending") {
			return upgrade.PlanUpgradeRequest{}, upgrade.ErrPendingExists
		}
		return upgrade.PlanUpgradeRequest{}, fmt.Errorf("failed to create upgrade request: %w", err)
	}
	return r.GetByID(ctx, id)
}

// HasPending implements upgrade.UpgradeRepository.
func (r *upgradeRepositoryImpl) HasPending(ctx context.Context, userID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM plan_upgrade_requests WHERE user_id = $1 AND status = 'pending')`, userID).Scan(&exists)
	return exists, err
}

// List implements upgrade.UpgradeRepository.
func (r *upgradeRepositoryImpl) List(ctx context.Context, filter upgrade.UpgradeFilter) ([]upgrade.PlanUpgradeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := upgradeSelect
	var args []interface{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += ` WHERE r.status = $1`
	}
	query += ` ORDER BY r.created_at DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list upgrade requests: %w", err)
	}
	return collectUpgrades(rows)
}

// ListByCenter implements upgrade.UpgradeRepository.
func (r *upgradeRepositoryImpl) ListByCenter(ctx context.Context, centerID string) ([]upgrade.PlanUpgradeRequest, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, upgradeSelect+` WHERE r.center_id = $1 ORDER BY r.created_at DESC`, centerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list upgrade requests: %w", err)
	}
	return collectUpgrades(rows)
}

// Resolve implements upgrade.UpgradeRepository.
func (r *upgradeRepositoryImpl) Resolve(ctx context.Context, id string, status upgrade.Status, adminID string, adminNotes *string, at *time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE plan_upgrade_requests
		SET status = $1, handled_by = $2, admin_notes = $3, handled_at = $4, updated_at = NOW()
		WHERE id = $5 AND status = 'pending'
	`, status, adminID, adminNotes, at, id)
	if err != nil {
		return false, fmt.Errorf("failed to resolve upgrade request: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
